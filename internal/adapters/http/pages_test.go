package http_test

import (
	"net/http/httptest"
	"strings"
	"testing"
)

func TestStaticPages(t *testing.T) {
	app := setupApp(t, makeDeps(nil))

	pages := map[string]string{
		"/":        "Street-level crime near you",
		"/cities":  "/city/london",
		"/about":   "About",
		"/privacy": "Privacy",
		"/terms":   "Terms of use",
		"/contact": "contact-form",
	}
	for path, want := range pages {
		resp, err := app.Test(httptest.NewRequest("GET", path, nil), -1)
		if err != nil {
			t.Fatal(err)
		}
		if resp.StatusCode != 200 {
			t.Errorf("%s: expected 200, got %d", path, resp.StatusCode)
			continue
		}
		if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
			t.Errorf("%s: expected html, got %q", path, ct)
		}
		if body := string(readBody(t, resp.Body)); !strings.Contains(body, want) {
			t.Errorf("%s: body does not contain %q", path, want)
		}
	}
}

func TestCityPage_CaseInsensitive(t *testing.T) {
	app := setupApp(t, makeDeps(nil))

	resp, _ := app.Test(httptest.NewRequest("GET", "/city/MANCHESTER", nil), -1)
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	body := string(readBody(t, resp.Body))
	if !strings.Contains(body, "Crime in Manchester") {
		t.Error("expected the Manchester heading")
	}
	if !strings.Contains(body, `data-lat="53.4808"`) {
		t.Error("expected the map centred on Manchester")
	}
	if !strings.Contains(body, `href="https://crimemap.example/city/manchester"`) {
		t.Error("expected a canonical link using the slug")
	}
}

func TestCityPage_NotFound(t *testing.T) {
	app := setupApp(t, makeDeps(nil))

	resp, _ := app.Test(httptest.NewRequest("GET", "/city/atlantis", nil), -1)
	if resp.StatusCode != 404 {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
	body := string(readBody(t, resp.Body))
	if !strings.Contains(body, "Page not found") || !strings.Contains(body, "atlantis") {
		t.Errorf("expected the not-found page naming the city, got %s", body)
	}
}

func TestUnknownPage(t *testing.T) {
	app := setupApp(t, makeDeps(nil))

	resp, _ := app.Test(httptest.NewRequest("GET", "/no/such/page", nil), -1)
	if resp.StatusCode != 404 {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Errorf("expected html, got %q", ct)
	}
}

func TestSitemap(t *testing.T) {
	app := setupApp(t, makeDeps(nil))

	resp, _ := app.Test(httptest.NewRequest("GET", "/sitemap.xml", nil), -1)
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	body := string(readBody(t, resp.Body))
	for _, want := range []string{
		`<?xml`,
		`<loc>https://crimemap.example/</loc>`,
		`<loc>https://crimemap.example/about</loc>`,
		`<loc>https://crimemap.example/city/london</loc>`,
		`<loc>https://crimemap.example/city/manchester</loc>`,
	} {
		if !strings.Contains(body, want) {
			t.Errorf("sitemap missing %s", want)
		}
	}
}

func TestRobots(t *testing.T) {
	app := setupApp(t, makeDeps(nil))

	resp, _ := app.Test(httptest.NewRequest("GET", "/robots.txt", nil), -1)
	body := string(readBody(t, resp.Body))
	if !strings.Contains(body, "Sitemap: https://crimemap.example/sitemap.xml") {
		t.Errorf("unexpected robots.txt %q", body)
	}
}

func TestStaticAssets(t *testing.T) {
	app := setupApp(t, makeDeps(nil))

	for _, path := range []string{"/static/js/map.js", "/static/css/style.css"} {
		resp, _ := app.Test(httptest.NewRequest("GET", path, nil), -1)
		if resp.StatusCode != 200 {
			t.Errorf("%s: expected 200, got %d", path, resp.StatusCode)
		}
	}
}

func TestDocs(t *testing.T) {
	app := setupApp(t, makeDeps(nil))

	resp, _ := app.Test(httptest.NewRequest("GET", "/docs/openapi.yaml", nil), -1)
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if !strings.Contains(string(readBody(t, resp.Body)), "openapi: 3.0.3") {
		t.Error("expected the OpenAPI document")
	}
}
