package cmd

import (
	"net/url"

	"github.com/goliatone/go-crudgen/pkg/schema"
)

// sourceFor maps a command line argument to a schema source.
func sourceFor(arg string) schema.Source {
	if isRemote(arg) {
		return schema.SourceFromURL(arg)
	}
	return schema.SourceFromFile(arg)
}

// isRemote reports whether arg is an http or https URL with a host. url.Parse
// lowercases the scheme, so HTTP:// and https:// are treated alike.
func isRemote(arg string) bool {
	u, err := url.Parse(arg)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
