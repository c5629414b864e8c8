package http

import (
	"errors"
	"sort"

	"github.com/gofiber/fiber/v2"
	"github.com/graphql-go/graphql"

	"github.com/mathieuadams/ukcrimerepository/internal/core/domain"
)

type categoryCount struct {
	Category string `json:"category"`
	Count    int    `json:"count"`
}

// sortedCategories flattens a histogram, largest first then by name.
func sortedCategories(h domain.CategoryHistogram) []categoryCount {
	out := make([]categoryCount, 0, len(h))
	for cat, n := range h {
		out = append(out, categoryCount{Category: cat, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Category < out[j].Category
	})
	return out
}

// resolverError strips upstream detail from a resolver failure in
// production. Validation messages are always kept.
func resolverError(deps *Dependencies, err error) error {
	if err == nil {
		return nil
	}
	var qe *domain.QueryError
	if !errors.As(err, &qe) {
		return errors.New("internal server error")
	}
	if deps.Production || qe.Kind == domain.KindBadRequest || qe.Detail() == "" {
		return errors.New(qe.Message)
	}
	return errors.New(qe.Message + ": " + qe.Detail())
}

// buildSchema creates the read-only GraphQL schema wired to our services.
func buildSchema(deps *Dependencies) (graphql.Schema, error) {
	coordinateType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Coordinate",
		Fields: graphql.Fields{
			"lat": &graphql.Field{Type: graphql.Float},
			"lng": &graphql.Field{Type: graphql.Float},
		},
	})

	boundsType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Bounds",
		Fields: graphql.Fields{
			"north": &graphql.Field{Type: graphql.Float},
			"south": &graphql.Field{Type: graphql.Float},
			"east":  &graphql.Field{Type: graphql.Float},
			"west":  &graphql.Field{Type: graphql.Float},
		},
	})

	crimeType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Crime",
		Fields: graphql.Fields{
			"id":            &graphql.Field{Type: graphql.String},
			"persistent_id": &graphql.Field{Type: graphql.String},
			"category": &graphql.Field{
				Type: graphql.String,
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return p.Source.(domain.CrimeRecord).CategoryOrUnknown(), nil
				},
			},
			"month":         &graphql.Field{Type: graphql.String},
			"location_type": &graphql.Field{Type: graphql.String},
			"street": &graphql.Field{
				Type: graphql.String,
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					rec := p.Source.(domain.CrimeRecord)
					if rec.Location == nil {
						return nil, nil
					}
					return rec.Location.Street.Name, nil
				},
			},
			"location": &graphql.Field{
				Type: coordinateType,
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					pt, ok := p.Source.(domain.CrimeRecord).Point()
					if !ok {
						return nil, nil
					}
					return pt, nil
				},
			},
			"outcome": &graphql.Field{
				Type: graphql.String,
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					rec := p.Source.(domain.CrimeRecord)
					if rec.OutcomeStatus == nil {
						return nil, nil
					}
					return rec.OutcomeStatus.Category, nil
				},
			},
		},
	})

	categoryType := graphql.NewObject(graphql.ObjectConfig{
		Name: "CategoryCount",
		Fields: graphql.Fields{
			"category": &graphql.Field{Type: graphql.String},
			"count":    &graphql.Field{Type: graphql.Int},
		},
	})

	crimeResultType := graphql.NewObject(graphql.ObjectConfig{
		Name: "CrimeResult",
		Fields: graphql.Fields{
			"location": &graphql.Field{Type: coordinateType},
			"date":     &graphql.Field{Type: graphql.String},
			"count":    &graphql.Field{Type: graphql.Int},
			"crimes":   &graphql.Field{Type: graphql.NewList(crimeType)},
			"categories": &graphql.Field{
				Type: graphql.NewList(categoryType),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return sortedCategories(p.Source.(*domain.CrimeQueryResult).Categories), nil
				},
			},
			"bounds":  &graphql.Field{Type: boundsType},
			"message": &graphql.Field{Type: graphql.String},
		},
	})

	dateType := graphql.NewObject(graphql.ObjectConfig{
		Name: "ReportingDate",
		Fields: graphql.Fields{
			"date": &graphql.Field{Type: graphql.String},
		},
	})

	forceType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Force",
		Fields: graphql.Fields{
			"id":   &graphql.Field{Type: graphql.String},
			"name": &graphql.Field{Type: graphql.String},
		},
	})

	cityType := graphql.NewObject(graphql.ObjectConfig{
		Name: "City",
		Fields: graphql.Fields{
			"slug":  &graphql.Field{Type: graphql.String},
			"name":  &graphql.Field{Type: graphql.String},
			"lat":   &graphql.Field{Type: graphql.Float},
			"lng":   &graphql.Field{Type: graphql.Float},
			"force": &graphql.Field{Type: graphql.String},
		},
	})

	suggestionType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Suggestion",
		Fields: graphql.Fields{
			"name": &graphql.Field{Type: graphql.String},
			"coords": &graphql.Field{
				Type: graphql.NewList(graphql.Float),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					c := p.Source.(domain.Suggestion).Coords
					return []float64{c[0], c[1]}, nil
				},
			},
		},
	})

	queryType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"crimes": &graphql.Field{
				Type:        crimeResultType,
				Description: "Street-level crimes within a mile of a point",
				Args: graphql.FieldConfigArgument{
					"lat":  &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
					"lng":  &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
					"date": &graphql.ArgumentConfig{Type: graphql.String, DefaultValue: ""},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					lat := p.Args["lat"].(string)
					lng := p.Args["lng"].(string)
					date, _ := p.Args["date"].(string)
					res, err := deps.Crimes.GetCrimes(p.Context, lat, lng, date)
					if err != nil {
						return nil, resolverError(deps, err)
					}
					return res, nil
				},
			},
			"dates": &graphql.Field{
				Type:        graphql.NewList(dateType),
				Description: "Most recent reporting months",
				Args: graphql.FieldConfigArgument{
					"limit": &graphql.ArgumentConfig{Type: graphql.Int, DefaultValue: datesLimit},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					dates, _, err := deps.Crimes.LatestDates(p.Context, p.Args["limit"].(int))
					if err != nil {
						return nil, resolverError(deps, err)
					}
					return dates, nil
				},
			},
			"forces": &graphql.Field{
				Type:        graphql.NewList(forceType),
				Description: "All police forces",
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					forces, err := deps.Crimes.Forces(p.Context)
					if err != nil {
						return nil, resolverError(deps, err)
					}
					return forces, nil
				},
			},
			"search": &graphql.Field{
				Type:        graphql.NewList(suggestionType),
				Description: "City suggestions for a query of at least three characters",
				Args: graphql.FieldConfigArgument{
					"q": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return deps.Cities.Suggest(p.Args["q"].(string)), nil
				},
			},
			"cities": &graphql.Field{
				Type: graphql.NewList(cityType),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return deps.Cities.All(), nil
				},
			},
			"city": &graphql.Field{
				Type: cityType,
				Args: graphql.FieldConfigArgument{
					"name": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					city, err := deps.Cities.Lookup(p.Args["name"].(string))
					if err != nil {
						return nil, resolverError(deps, err)
					}
					return city, nil
				},
			},
		},
	})

	return graphql.NewSchema(graphql.SchemaConfig{
		Query: queryType,
	})
}

// GraphQLHandler serves the GraphQL endpoint.
func GraphQLHandler(deps *Dependencies) fiber.Handler {
	schema, err := buildSchema(deps)
	if err != nil {
		// programming error in the schema definition
		panic("graphql schema build: " + err.Error())
	}

	type gqlRequest struct {
		Query         string                 `json:"query"`
		OperationName string                 `json:"operationName"`
		Variables     map[string]interface{} `json:"variables"`
	}

	return func(c *fiber.Ctx) error {
		var req gqlRequest
		if err := c.BodyParser(&req); err != nil {
			return errBadRequest(c, "invalid request body")
		}

		result := graphql.Do(graphql.Params{
			Schema:         schema,
			RequestString:  req.Query,
			VariableValues: req.Variables,
			OperationName:  req.OperationName,
			Context:        c.UserContext(),
		})

		return c.JSON(result)
	}
}
