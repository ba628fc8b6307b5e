package domain

// SettingsField describes one editable settings entry for form construction.
// An explicit descriptor list replaces iteration over object keys, so the
// order and the secret flag are fixed in code rather than inferred.
type SettingsField struct {
	Key    string `json:"key"`
	Label  string `json:"label"`
	Secret bool   `json:"secret"`
}

// SettingsFields enumerates every settings field in form order.
func SettingsFields() []SettingsField {
	return []SettingsField{
		{Key: "siteName", Label: "Site name"},
		{Key: "siteDescription", Label: "Site description"},
		{Key: "siteLogo", Label: "Site logo URL"},
		{Key: "youtubeChannel", Label: "YouTube channel URL"},
		{Key: "gistId", Label: "Gist ID"},
		{Key: "githubToken", Label: "GitHub personal token", Secret: true},
		{Key: "adminUser", Label: "Admin username"},
		{Key: "adminPass", Label: "Admin password", Secret: true},
	}
}
