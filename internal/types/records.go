package types

// TextRecordKey names a profile metadata record
type TextRecordKey string

// Fixed set of text record keys a profile may carry
const (
	TextRecordDescription TextRecordKey = "description"
	TextRecordKeywords    TextRecordKey = "keywords"
	TextRecordURL         TextRecordKey = "url"
	TextRecordEmail       TextRecordKey = "email"
	TextRecordPhone       TextRecordKey = "phone"
	TextRecordAvatar      TextRecordKey = "avatar"
	TextRecordLocation    TextRecordKey = "location"
	TextRecordGithub      TextRecordKey = "com.github"
	TextRecordTwitter     TextRecordKey = "com.twitter"
	TextRecordFarcaster   TextRecordKey = "xyz.farcaster"
	TextRecordLens        TextRecordKey = "xyz.lens"
	TextRecordTelegram    TextRecordKey = "org.telegram"
	TextRecordDiscord     TextRecordKey = "com.discord"
	// TextRecordFrame holds the source URL of the profile's embedded frame
	TextRecordFrame TextRecordKey = "frame"
)

// AllTextRecordKeys lists every supported key in display order
var AllTextRecordKeys = []TextRecordKey{
	TextRecordDescription,
	TextRecordKeywords,
	TextRecordURL,
	TextRecordEmail,
	TextRecordPhone,
	TextRecordAvatar,
	TextRecordLocation,
	TextRecordGithub,
	TextRecordTwitter,
	TextRecordFarcaster,
	TextRecordLens,
	TextRecordTelegram,
	TextRecordDiscord,
	TextRecordFrame,
}

// Valid reports whether k is one of the supported keys
func (k TextRecordKey) Valid() bool {
	for _, known := range AllTextRecordKeys {
		if k == known {
			return true
		}
	}
	return false
}

// TextRecords maps record keys to values. Missing keys are unset.
type TextRecords map[TextRecordKey]string

// Get returns the value for key, or "" when unset
func (r TextRecords) Get(key TextRecordKey) string {
	if r == nil {
		return ""
	}
	return r[key]
}

// FrameURL returns the configured frame source URL, or "" when absent
func (r TextRecords) FrameURL() string {
	return r.Get(TextRecordFrame)
}
