package elemsel

import "strings"

// Configuration keys understood by SettingsFromMap.
const (
	KeyBlacklist     = "parser.html.selector.blacklist"
	KeyWhitelist     = "parser.html.selector.whitelist"
	KeyStorageField  = "parser.html.selector.storage_field"
	KeyProtectedURLs = "parser.html.selector.protected_urls"
	KeyMode          = "parser.html.selector.mode"
	KeyCharset       = "parser.html.selector.charset"
)

// Selector engines.
const (
	// SelectorModeGrammar parses entries with the compound selector grammar.
	SelectorModeGrammar = "selector"

	// SelectorModeLegacy matches entries as exact type, type#id and
	// type.class strings. See LegacySelectorSet.
	SelectorModeLegacy = "legacy"
)

// Settings holds the raw filtering configuration as read from a
// configuration source. Settings are validated by NewFilter.
type Settings struct {
	// Blacklist is a comma-separated selector list of subtrees to empty.
	Blacklist string

	// Whitelist is a comma-separated selector list of subtrees to keep.
	// It takes priority over Blacklist when non-empty.
	Whitelist string

	// StorageField names the metadata field receiving the extracted text.
	// When empty, the extracted text replaces the document text.
	StorageField string

	// ProtectedURLs is a comma-separated list of document URLs that are
	// never filtered.
	ProtectedURLs string

	// Mode selects the selector engine. Empty means SelectorModeGrammar.
	Mode string

	// Charset names the storage field encoding. Empty means UTF-8.
	Charset string
}

// SettingsFromMap reads Settings from string-keyed configuration.
// Unknown keys are ignored.
func SettingsFromMap(m map[string]string) Settings {
	return Settings{
		Blacklist:     m[KeyBlacklist],
		Whitelist:     m[KeyWhitelist],
		StorageField:  strings.TrimSpace(m[KeyStorageField]),
		ProtectedURLs: m[KeyProtectedURLs],
		Mode:          strings.TrimSpace(m[KeyMode]),
		Charset:       strings.TrimSpace(m[KeyCharset]),
	}
}

// Map returns the settings as string-keyed configuration, omitting empty
// values.
func (s Settings) Map() map[string]string {
	m := make(map[string]string)
	set := func(key, value string) {
		if value != "" {
			m[key] = value
		}
	}
	set(KeyBlacklist, s.Blacklist)
	set(KeyWhitelist, s.Whitelist)
	set(KeyStorageField, s.StorageField)
	set(KeyProtectedURLs, s.ProtectedURLs)
	set(KeyMode, s.Mode)
	set(KeyCharset, s.Charset)
	return m
}

// Merge returns s with every non-empty field of other applied on top.
func (s Settings) Merge(other Settings) Settings {
	pick := func(base, override string) string {
		if override != "" {
			return override
		}
		return base
	}
	return Settings{
		Blacklist:     pick(s.Blacklist, other.Blacklist),
		Whitelist:     pick(s.Whitelist, other.Whitelist),
		StorageField:  pick(s.StorageField, other.StorageField),
		ProtectedURLs: pick(s.ProtectedURLs, other.ProtectedURLs),
		Mode:          pick(s.Mode, other.Mode),
		Charset:       pick(s.Charset, other.Charset),
	}
}

// ProtectedURLs is a set of document URLs exempt from filtering.
// Membership is exact string equality.
type ProtectedURLs map[string]struct{}

// NewProtectedURLs builds a set from a comma-separated list. Entries are
// trimmed and blank entries are skipped.
func NewProtectedURLs(list string) ProtectedURLs {
	set := make(ProtectedURLs)
	for _, u := range strings.Split(list, ",") {
		u = strings.TrimSpace(u)
		if u != "" {
			set[u] = struct{}{}
		}
	}
	return set
}

// Contains reports whether url is protected.
func (p ProtectedURLs) Contains(url string) bool {
	_, ok := p[url]
	return ok
}
