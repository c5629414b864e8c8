package http

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/filesystem"

	"github.com/mathieuadams/ukcrimerepository/internal/core/domain"
	"github.com/mathieuadams/ukcrimerepository/web"
)

const (
	defaultZoom = 13
	cityZoom    = 14
)

// staticPage is a route rendered from a template with no per-request data.
type staticPage struct {
	Path        string
	Template    string
	Title       string
	Description string
}

var staticPages = []staticPage{
	{"/", "index", "Street-level crime map", "Interactive map of street-level crime across England, Wales and Northern Ireland."},
	{"/cities", "cities", "Cities", "Crime maps for major UK cities."},
	{"/about", "about", "About", "Where the crime data comes from and how to read the map."},
	{"/privacy", "privacy", "Privacy", "How UK Crime Map handles your data."},
	{"/terms", "terms", "Terms of use", "Terms for using UK Crime Map."},
	{"/contact", "contact", "Contact", "Get in touch with the UK Crime Map team."},
}

// pageData is what every template sees.
type pageData struct {
	Title       string
	Description string
	BaseURL     string
	Path        string
	Year        int
	Center      domain.Coordinate
	Zoom        int
	Cities      []domain.City
	City        domain.City
	Missing     string
}

// pageRenderer holds one parsed template set per page.
type pageRenderer struct {
	pages map[string]*template.Template
}

func newPageRenderer(fsys fs.FS) (*pageRenderer, error) {
	names := []string{"notfound", "city"}
	for _, p := range staticPages {
		names = append(names, p.Template)
	}

	r := &pageRenderer{pages: make(map[string]*template.Template, len(names))}
	for _, name := range names {
		tmpl, err := template.ParseFS(fsys, "templates/layout.html", "templates/"+name+".html")
		if err != nil {
			return nil, fmt.Errorf("parse %s template: %w", name, err)
		}
		r.pages[name] = tmpl
	}
	return r, nil
}

func (r *pageRenderer) render(c *fiber.Ctx, status int, name string, data pageData) error {
	tmpl, ok := r.pages[name]
	if !ok {
		return errInternal(c, "unknown page "+name)
	}
	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "layout", data); err != nil {
		LoggerFromCtx(c.UserContext()).Error("render page", "page", name, "error", err)
		return errInternal(c, "failed to render page")
	}
	c.Type("html", "utf-8")
	return c.Status(status).Send(buf.Bytes())
}

func (d *Dependencies) page(path, title, description string) pageData {
	cities := d.Cities.All()
	data := pageData{
		Title:       title,
		Description: description,
		BaseURL:     strings.TrimRight(d.BaseURL, "/"),
		Path:        path,
		Year:        time.Now().Year(),
		Zoom:        defaultZoom,
		Cities:      cities,
	}
	if len(cities) > 0 {
		data.Center = cities[0].Coordinate()
	}
	return data
}

// SetupPages registers the HTML pages, the sitemap, robots.txt and /static.
func SetupPages(app *fiber.App, deps *Dependencies) error {
	renderer, err := newPageRenderer(web.Templates)
	if err != nil {
		return err
	}

	for _, p := range staticPages {
		p := p
		app.Get(p.Path, func(c *fiber.Ctx) error {
			return renderer.render(c, fiber.StatusOK, p.Template, deps.page(p.Path, p.Title, p.Description))
		})
	}

	app.Get("/city/:name", CityPageHandler(deps, renderer))
	app.Get("/sitemap.xml", SitemapHandler(deps))
	app.Get("/robots.txt", RobotsHandler(deps))

	assets, err := fs.Sub(web.Static, "static")
	if err != nil {
		return fmt.Errorf("static assets: %w", err)
	}
	app.Use("/static", filesystem.New(filesystem.Config{
		Root:   http.FS(assets),
		MaxAge: 7 * 24 * 3600,
	}))

	// Catch-all, must stay last.
	app.Use(func(c *fiber.Ctx) error {
		if strings.HasPrefix(c.Path(), "/api/") {
			return newError(c, fiber.StatusNotFound, domain.KindNotFound.String(), "no such endpoint", "")
		}
		return renderer.render(c, fiber.StatusNotFound, "notfound",
			deps.page(c.Path(), "Page not found", "The page you asked for does not exist."))
	})
	return nil
}

// CityPageHandler renders a city map page, or the not-found page with a 404.
func CityPageHandler(deps *Dependencies, renderer *pageRenderer) fiber.Handler {
	return func(c *fiber.Ctx) error {
		name := c.Params("name")
		city, err := deps.Cities.Lookup(name)
		if err != nil {
			data := deps.page(c.Path(), "City not found", "No crime map exists for this city.")
			data.Missing = name
			return renderer.render(c, fiber.StatusNotFound, "notfound", data)
		}

		data := deps.page("/city/"+city.Slug, "Crime in "+city.Name,
			fmt.Sprintf("Map of recent street-level crime in %s.", city.Name))
		data.City = city
		data.Center = city.Coordinate()
		data.Zoom = cityZoom
		return renderer.render(c, fiber.StatusOK, "city", data)
	}
}

type sitemapURL struct {
	Loc        string `xml:"loc"`
	ChangeFreq string `xml:"changefreq,omitempty"`
	Priority   string `xml:"priority,omitempty"`
}

type sitemapURLSet struct {
	XMLName xml.Name     `xml:"urlset"`
	XMLNS   string       `xml:"xmlns,attr"`
	URLs    []sitemapURL `xml:"url"`
}

// SitemapHandler lists every page and city.
func SitemapHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		base := strings.TrimRight(deps.BaseURL, "/")
		set := sitemapURLSet{XMLNS: "http://www.sitemaps.org/schemas/sitemap/0.9"}
		for _, p := range staticPages {
			set.URLs = append(set.URLs, sitemapURL{Loc: base + p.Path, ChangeFreq: "monthly", Priority: "0.5"})
		}
		for _, city := range deps.Cities.All() {
			set.URLs = append(set.URLs, sitemapURL{Loc: base + "/city/" + city.Slug, ChangeFreq: "monthly", Priority: "0.8"})
		}

		out, err := xml.MarshalIndent(set, "", "  ")
		if err != nil {
			return errInternal(c, "failed to build sitemap")
		}
		c.Type("xml", "utf-8")
		return c.Send(append([]byte(xml.Header), out...))
	}
}

// RobotsHandler allows everything except the API and points at the sitemap.
func RobotsHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		base := strings.TrimRight(deps.BaseURL, "/")
		c.Type("txt", "utf-8")
		return c.SendString("User-agent: *\nAllow: /\nDisallow: /api/\nSitemap: " + base + "/sitemap.xml\n")
	}
}
