package foodfacts_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"dishadvisor/tools/foodfacts"
	"dishadvisor/tools/upstream"

	should "github.com/stretchr/testify/assert"
	must "github.com/stretchr/testify/require"
)

func TestClient_BestMatch(t *testing.T) {
	var gotQuery map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		gotQuery = map[string]string{}
		for k := range q {
			gotQuery[k] = q.Get(k)
		}
		switch q.Get("search_terms") {
		case "chicken":
			fmt.Fprint(w, `{"products":[
				{"product_name":"Nuggets","nutrition_grades":"d","complete":0},
				{"product_name":"Breast","nutrition_grades":"a","complete":"1","labels_tags":["en:organic"],"url":"https://off/breast"}
			]}`)
		case "down":
			w.WriteHeader(http.StatusServiceUnavailable)
		default:
			fmt.Fprint(w, `{"count":0,"products":[]}`)
		}
	}))
	defer srv.Close()

	api := upstream.NewClient(upstream.ClientOpts{HTTPClient: srv.Client()})
	c := foodfacts.NewClient(api, srv.URL+"/cgi/search.pl")
	ctx := context.Background()

	t.Run("picks best scoring product", func(t *testing.T) {
		p, ok, err := c.BestMatch(ctx, "chicken")
		must.NoError(t, err)
		should.True(t, ok)
		should.Equal(t, "Breast", p.Name)
		should.Equal(t, "https://off/breast", p.URL)
		should.Equal(t, map[string]string{
			"search_terms":  "chicken",
			"search_simple": "1",
			"action":        "process",
			"json":          "1",
			"page_size":     "5",
		}, gotQuery)
	})

	t.Run("no products is not an error", func(t *testing.T) {
		p, ok, err := c.BestMatch(ctx, "saffron")
		must.NoError(t, err)
		should.False(t, ok)
		should.True(t, p.IsZero())
	})

	t.Run("outage is unavailable", func(t *testing.T) {
		_, _, err := c.BestMatch(ctx, "down")
		must.Error(t, err)
		should.True(t, upstream.IsUnavailable(err))
	})

	t.Run("blank term", func(t *testing.T) {
		_, _, err := c.BestMatch(ctx, " ")
		should.True(t, upstream.IsInvalidInput(err))
	})
}
