package eams

import (
	"fmt"
	"gradewatch/lib/scrapers/webvpn"
	"net/url"
)

// Endpoints are the academic system resources used by the catalog and the
// fetcher, relative to the system root behind the gateway.
type Endpoints struct {
	Home      string
	Landing   string
	DataQuery string
	Search    string

	ProjectID string
	EntityID  string
	// CatalogTag is used for semester discovery when the landing page has no
	// tag, FetchTag is the equivalent for grade fetching.
	CatalogTag string
	FetchTag   string
	// CatalogProbe is the semester value sent when asking for the semester
	// calendar, any valid semester returns the full calendar.
	CatalogProbe string
}

func DefaultEndpoints() Endpoints {
	return Endpoints{
		Home:         "home.action",
		Landing:      "teach/grade/course/person.action",
		DataQuery:    "dataQuery.action",
		Search:       "teach/grade/course/person!search.action",
		ProjectID:    "1",
		EntityID:     "1",
		CatalogTag:   "semesterBar4452416521Semester",
		FetchTag:     "semesterBar13572391471Semester",
		CatalogProbe: "4324",
	}
}

func (e Endpoints) orDefault() Endpoints {
	if e.Landing == "" {
		return DefaultEndpoints()
	}
	return e
}

const formContentType = "application/x-www-form-urlencoded; charset=UTF-8"

// ajaxProfile is what the portal's own scripts send for in-page requests.
func ajaxProfile(origin webvpn.Origin, e Endpoints) webvpn.Profile {
	return webvpn.Profile{
		Name: "eams-ajax",
		Headers: map[string]string{
			"Content-Type":     formContentType,
			"X-Requested-With": "XMLHttpRequest",
			"Referer":          origin.EamsUrl(e.Home),
		},
	}
}

func searchReferer(origin webvpn.Origin, e Endpoints, semesterID string) string {
	return fmt.Sprintf(
		"%s?semesterId=%s&projectType=",
		origin.EamsUrl(e.Search), url.QueryEscape(semesterID),
	)
}
