// Package i18nbackend supplies translation namespaces to a localization
// framework on demand.
//
// A Backend answers each (language, namespace) read from an in-memory (or
// Redis) cache, then from a local file or endpoint server, and finally by
// machine-translating the source-language namespace through a remote
// translation API. Keys the framework fails to resolve are reported back to
// the API in debounced batches.
//
// Basic usage:
//
//	import (
//	    "context"
//	    "github.com/ZaguanLabs/i18nbackend"
//	)
//
//	func main() {
//	    b, err := i18nbackend.New(
//	        i18nbackend.WithAPIKey(os.Getenv("I18N_API_KEY")),
//	        i18nbackend.WithBaseURL("http://localhost:3000"),
//	        i18nbackend.WithLoadPath("/locales/{{lng}}/{{ns}}.json"),
//	    )
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    defer b.Close(context.Background())
//
//	    res, err := b.Read(context.Background(), "es", "common")
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    fmt.Println(res["greeting"]) // Hola
//
//	    b.Create([]string{"es"}, "common", "farewell", "Goodbye")
//	}
package i18nbackend
