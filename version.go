package i18nbackend

// Release metadata reported by the CLI and sent as the User-Agent of every
// namespace fetch, translation request and missing-key batch.
const (
	Name        = "i18nbackend"
	Description = "Translation resource backend with on-demand machine translation"
	Version     = "0.1.0"
)

// Set at link time:
//
//	go build -ldflags "-X github.com/ZaguanLabs/i18nbackend.GitCommit=$(git rev-parse HEAD)"
var (
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// FullVersion is Version with the short commit appended when one was linked
// in, e.g. "0.1.0+abc1234". The serve command logs it at startup.
func FullVersion() string {
	if GitCommit == "unknown" || GitCommit == "" {
		return Version
	}
	short := GitCommit
	if len(short) > 7 {
		short = short[:7]
	}
	return Version + "+" + short
}

// UserAgent identifies the backend to locale servers and the translation API.
func UserAgent() string {
	return Name + "/" + Version
}
