package query

import (
	"strings"
)

// Framework synonym dictionary for query expansion.
//
// Bidirectional Japanese/English term mapping: looking up a key returns
// its synonyms, and looking up a term found inside a synonym list returns
// the key plus the remaining synonyms. Lookup is case-insensitive. The
// dictionary bridges the vocabulary gap between how users phrase questions
// and how the documentation names things, improving lexical recall.

// synonymEntry is one dictionary entry. Entries are held in a slice so
// reverse lookups scan in a fixed order and expansion stays deterministic.
type synonymEntry struct {
	key      string
	synonyms []string
}

// SynonymMap provides bidirectional case-insensitive synonym lookup.
// Built once at process start; read-only afterwards.
type SynonymMap struct {
	entries []synonymEntry
}

// NewSynonymMap builds the default framework synonym map.
func NewSynonymMap() *SynonymMap {
	return &SynonymMap{entries: defaultSynonyms}
}

// NewSynonymMapWith builds a map from custom entries, preserving order.
// Intended for tests and future externalized dictionaries.
func NewSynonymMapWith(entries map[string][]string, order []string) *SynonymMap {
	m := &SynonymMap{}
	for _, key := range order {
		if syns, ok := entries[key]; ok {
			m.entries = append(m.entries, synonymEntry{key: key, synonyms: syns})
		}
	}
	return m
}

// Lookup returns the synonyms for a term, excluding the term itself when
// it was found via reverse lookup. Returns nil when the term is unknown.
func (m *SynonymMap) Lookup(term string) []string {
	if strings.TrimSpace(term) == "" {
		return nil
	}
	lower := strings.ToLower(term)

	for _, e := range m.entries {
		if strings.ToLower(e.key) == lower {
			return e.synonyms
		}
		for _, s := range e.synonyms {
			if strings.ToLower(s) == lower {
				// Reverse hit: the key plus the other synonyms.
				result := make([]string, 0, len(e.synonyms))
				result = append(result, e.key)
				for _, other := range e.synonyms {
					if strings.ToLower(other) != lower {
						result = append(result, other)
					}
				}
				return result
			}
		}
	}
	return nil
}

// defaultSynonyms is the built-in framework dictionary.
var defaultSynonyms = []synonymEntry{
	// Database access
	{"DB接続", []string{"universal-dao", "UniversalDao", "データベースアクセス", "database access"}},
	{"universal-dao", []string{"UniversalDao", "データベースアクセス", "DB接続", "nablarch-common-dao"}},

	// Validation
	{"バリデーション", []string{"validation", "nablarch-core-validation", "BeanValidation", "入力チェック"}},
	{"validation", []string{"バリデーション", "nablarch-core-validation", "入力チェック"}},

	// REST
	{"REST", []string{"JAX-RS", "RESTful", "nablarch-fw-jaxrs", "JaxRsResponseHandler"}},
	{"JAX-RS", []string{"REST", "RESTful", "nablarch-fw-jaxrs"}},

	// Handlers
	{"ハンドラ", []string{"Handler", "handler queue", "ハンドラキュー"}},
	{"Handler", []string{"ハンドラ", "handler queue", "ハンドラキュー"}},
	{"ハンドラキュー", []string{"handler queue", "Handler", "ハンドラ"}},

	// System repository
	{"システムリポジトリ", []string{"SystemRepository", "system repository", "コンポーネント定義", "DI"}},
	{"SystemRepository", []string{"システムリポジトリ", "system repository", "コンポーネント定義"}},

	// Messaging
	{"メッセージング", []string{"messaging", "MOM", "nablarch-fw-messaging", "キュー"}},
	{"messaging", []string{"メッセージング", "MOM", "nablarch-fw-messaging"}},

	// Batch
	{"バッチ", []string{"batch", "nablarch-fw-batch", "バッチ処理", "JSR352"}},
	{"batch", []string{"バッチ", "nablarch-fw-batch", "バッチ処理"}},

	// Logging
	{"ログ", []string{"log", "logging", "nablarch-core-log", "ログ出力"}},
	{"log", []string{"ログ", "logging", "nablarch-core-log"}},

	// Actions
	{"アクション", []string{"Action", "action class", "業務アクション"}},
	{"Action", []string{"アクション", "action class", "業務アクション"}},

	// Configuration
	{"設定", []string{"configuration", "config", "設定ファイル", "コンポーネント定義"}},
	{"configuration", []string{"設定", "config", "設定ファイル"}},

	// Testing
	{"テスト", []string{"test", "testing", "nablarch-testing", "単体テスト"}},
	{"test", []string{"テスト", "testing", "nablarch-testing"}},

	// Web applications
	{"Web", []string{"web application", "nablarch-fw-web", "Webアプリケーション", "HttpRequest"}},
	{"web application", []string{"Web", "nablarch-fw-web", "Webアプリケーション"}},

	// Exclusive control
	{"排他制御", []string{"exclusive control", "楽観ロック", "optimistic lock", "悲観ロック"}},
	{"楽観ロック", []string{"optimistic lock", "排他制御", "exclusive control"}},

	// Code management
	{"コード管理", []string{"CodeManager", "code management", "コードマスタ"}},
	{"CodeManager", []string{"コード管理", "code management", "コードマスタ"}},
}
