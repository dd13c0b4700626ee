package eams

import (
	"context"
	"gradewatch/lib/scrapers/webvpn/webvpntest"
	"io"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDiscover(t *testing.T) {
	gateway := webvpntest.New(t, "2210000", "secret")
	endpoints := DefaultEndpoints()
	gateway.Handle(endpoints.Landing, func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `<div id="semesterBar31337Semester"></div>`)
	})
	gateway.Handle(endpoints.DataQuery, func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, calendarResponse)
	})
	session := openSession(t, gateway)

	semesters := Catalog{}.Discover(context.Background(), session)
	require.Len(t, semesters, 5)
	require.Equal(t, "4344", semesters[0].ID)

	queries := gateway.RequestsTo(endpoints.DataQuery)
	require.Len(t, queries, 1)
	require.Equal(t, "semesterBar31337Semester", queries[0].Form.Get("tagId"))
	require.Equal(t, "4324", queries[0].Form.Get("value"))
	require.Equal(t, "false", queries[0].Form.Get("empty"))

	landing := gateway.RequestsTo(endpoints.Landing)
	require.Equal(t, http.MethodGet, landing[0].Method)
	require.Equal(t, gateway.Origin.EamsUrl(endpoints.Home), landing[0].Header.Get("Referer"))

	s, err := Catalog{}.Resolve(context.Background(), session, "2")
	require.NoError(t, err)
	require.Equal(t, "4324", s.ID)
}

func TestDiscoverDefaultTag(t *testing.T) {
	gateway := webvpntest.New(t, "2210000", "secret")
	endpoints := DefaultEndpoints()
	gateway.Handle(endpoints.DataQuery, func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, calendarResponse)
	})
	session := openSession(t, gateway)

	// the landing page 404s and has no tag
	semesters := Catalog{}.Discover(context.Background(), session)
	require.Len(t, semesters, 5)
	require.Equal(t, endpoints.CatalogTag, gateway.RequestsTo(endpoints.DataQuery)[0].Form.Get("tagId"))
}

func TestDiscoverFallback(t *testing.T) {
	testCases := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{
			name: "status",
			handler: func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, "internal", http.StatusInternalServerError)
			},
		},
		{
			name: "unmatched",
			handler: func(w http.ResponseWriter, r *http.Request) {
				io.WriteString(w, `<html>login expired</html>`)
			},
		},
		{
			name: "no selectable semesters",
			handler: func(w http.ResponseWriter, r *http.Request) {
				io.WriteString(w, `semesters:{y0:[{id:12,schoolYear:"2001-2002",name:"1"}]},yearIndex:"0"`)
			},
		},
	}

	for _, test := range testCases {
		t.Run(test.name, func(t *testing.T) {
			gateway := webvpntest.New(t, "2210000", "secret")
			gateway.Handle(DefaultEndpoints().DataQuery, test.handler)
			session := openSession(t, gateway)

			semesters := Catalog{}.Discover(context.Background(), session)
			require.Equal(t, FallbackSemesters(), semesters)
		})
	}
}

func TestDiscoverTransportFallback(t *testing.T) {
	gateway := webvpntest.New(t, "2210000", "secret")
	session := openSession(t, gateway)
	gateway.Server.Close()

	semesters := Catalog{}.Discover(context.Background(), session)
	require.Equal(t, FallbackSemesters(), semesters)
}
