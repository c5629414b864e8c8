package http

import (
	"fmt"

	"github.com/gofiber/fiber/v2"

	"github.com/mathieuadams/ukcrimerepository/internal/core/domain"
)

// datesLimit caps how many reporting months /api/dates returns.
const datesLimit = 12

const contactThanks = "Thank you for your message. We'll get back to you soon."

type crimesResponse struct {
	Success bool `json:"success"`
	*domain.CrimeQueryResult
}

// CrimesHandler returns street-level crimes around lat/lng for a month.
func CrimesHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		result, err := deps.Crimes.GetCrimes(c.UserContext(), c.Query("lat"), c.Query("lng"), c.Query("date"))
		if err != nil {
			return writeQueryError(c, deps, err)
		}
		return c.JSON(crimesResponse{Success: true, CrimeQueryResult: result})
	}
}

// DatesHandler lists the most recent reporting months.
func DatesHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		dates, latest, err := deps.Crimes.LatestDates(c.UserContext(), datesLimit)
		if err != nil {
			return writeQueryError(c, deps, err)
		}
		c.Set("Cache-Control", fmt.Sprintf("public, max-age=%d", int(deps.Crimes.Dates().TTL().Seconds())))
		return c.JSON(fiber.Map{
			"success": true,
			"dates":   dates,
			"latest":  latest,
		})
	}
}

// ForcesHandler lists police forces.
func ForcesHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		forces, err := deps.Crimes.Forces(c.UserContext())
		if err != nil {
			return writeQueryError(c, deps, err)
		}
		c.Set("Cache-Control", "public, max-age=86400")
		return c.JSON(fiber.Map{"success": true, "forces": forces})
	}
}

// SearchHandler suggests cities for the search box.
func SearchHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"suggestions": deps.Cities.Suggest(c.Query("q"))})
	}
}

// ContactHandler accepts a contact form submission.
func ContactHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var form domain.ContactForm
		if err := c.BodyParser(&form); err != nil {
			return errBadRequest(c, "invalid request body")
		}

		if _, err := deps.Contact.Submit(c.UserContext(), form); err != nil {
			return writeQueryError(c, deps, err)
		}
		return c.JSON(fiber.Map{"success": true, "message": contactThanks})
	}
}

// ListCitiesHandler returns the city directory.
func ListCitiesHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.Set("Cache-Control", "public, max-age=86400")
		return c.JSON(fiber.Map{"success": true, "cities": deps.Cities.All()})
	}
}

// GetCityHandler returns one city by slug.
func GetCityHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		city, err := deps.Cities.Lookup(c.Params("name"))
		if err != nil {
			return writeQueryError(c, deps, err)
		}
		return c.JSON(fiber.Map{"success": true, "city": city})
	}
}
