package webvpn

import (
	"net/url"
	"strings"
)

// Origin describes one gateway deployment: where it lives, how it rewrites
// upstream hosts into path segments, and what the login frontend sends.
type Origin struct {
	BaseUrl string
	// IamPrefix is the rewritten path segment of the identity provider.
	IamPrefix string
	IamHost   string
	// IamQuery is the host-rewrite query string the gateway expects on
	// identity provider api calls.
	IamQuery map[string]string
	// EamsPrefix is the rewritten path segment of the academic system.
	EamsPrefix string
	EamsQuery  map[string]string

	UserAgent       string
	FrontendVersion string
	// ResourceMarker is a string only present on the academic system's
	// home page.
	ResourceMarker string

	// BrowserTransport wraps the http transport with a browser-like TLS
	// fingerprint.
	BrowserTransport bool
	// RequestsPerSecond limits the request rate of a session, zero means
	// unlimited.
	RequestsPerSecond float64
}

const (
	nankaiIamPrefix  = "/https/77726476706e69737468656265737421f9f64cd22931665b7f01c7a99c406d36af"
	nankaiEamsPrefix = "/https/77726476706e69737468656265737421f5f64c95347e6651700388a5d6502720dc08a5/eams"
)

func DefaultOrigin() Origin {
	return Origin{
		BaseUrl:   "https://webvpn.nankai.edu.cn",
		IamPrefix: nankaiIamPrefix,
		IamHost:   "iam.nankai.edu.cn",
		IamQuery: map[string]string{
			"vpn-12-o2-iam.nankai.edu.cn": "",
			"os":                          "web",
		},
		EamsPrefix: nankaiEamsPrefix,
		EamsQuery: map[string]string{
			"vpn-12-o2-eamis.nankai.edu.cn": "",
		},
		UserAgent:         "Mozilla/5.0 (X11; Linux x86_64; rv:109.0) Gecko/20100101 Firefox/115.0",
		FrontendVersion:   "3.0.9.8465",
		ResourceMarker:    "教务系统",
		RequestsPerSecond: 2,
	}
}

func (o Origin) Hostname() string {
	u, err := url.Parse(o.BaseUrl)
	if err != nil {
		return ""
	}
	return u.Hostname()
}

func (o Origin) IamPath(path string) string {
	return o.IamPrefix + "/" + strings.TrimPrefix(path, "/")
}

// EamsPath returns the absolute path of an academic system resource, an
// empty path refers to the system root.
func (o Origin) EamsPath(path string) string {
	if path == "" {
		return o.EamsPrefix
	}
	return o.EamsPrefix + "/" + strings.TrimPrefix(path, "/")
}

// EamsUrl is EamsPath prefixed with the gateway base url, used for Referer
// headers.
func (o Origin) EamsUrl(path string) string {
	return strings.TrimSuffix(o.BaseUrl, "/") + o.EamsPath(path)
}
