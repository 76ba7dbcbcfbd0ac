package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/graphql-go/graphql"

	"github.com/Tom-Shanks/FireSight-AI/internal/core/domain"
)

// buildSchema creates the GraphQL schema wired to our services.
func buildSchema(deps *Dependencies) (graphql.Schema, error) {
	geoPointType := graphql.NewObject(graphql.ObjectConfig{
		Name: "GeoPoint",
		Fields: graphql.Fields{
			"latitude":  &graphql.Field{Type: graphql.Float},
			"longitude": &graphql.Field{Type: graphql.Float},
		},
	})

	detectionType := graphql.NewObject(graphql.ObjectConfig{
		Name: "FireDetection",
		Fields: graphql.Fields{
			"id":             &graphql.Field{Type: graphql.String},
			"source":         &graphql.Field{Type: graphql.String},
			"location":       &graphql.Field{Type: geoPointType},
			"detection_time": &graphql.Field{Type: graphql.String},
			"frp":            &graphql.Field{Type: graphql.Float},
			"confidence":     &graphql.Field{Type: graphql.String},
		},
	})

	riskAreaType := graphql.NewObject(graphql.ObjectConfig{
		Name: "RiskArea",
		Fields: graphql.Fields{
			"id":         &graphql.Field{Type: graphql.String},
			"name":       &graphql.Field{Type: graphql.String},
			"center":     &graphql.Field{Type: geoPointType},
			"risk_score": &graphql.Field{Type: graphql.Float},
		},
	})

	riskAssessmentType := graphql.NewObject(graphql.ObjectConfig{
		Name: "RiskAssessment",
		Fields: graphql.Fields{
			"location":   &graphql.Field{Type: geoPointType},
			"risk_score": &graphql.Field{Type: graphql.Float},
			"confidence": &graphql.Field{Type: graphql.Float},
		},
	})

	queryType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"recentFires": &graphql.Field{
				Type:        graphql.NewList(detectionType),
				Description: "Recent satellite fire detections",
				Args: graphql.FieldConfigArgument{
					"hours": &graphql.ArgumentConfig{Type: graphql.Int, DefaultValue: 24},
					"limit": &graphql.ArgumentConfig{Type: graphql.Int, DefaultValue: 100},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					hours := p.Args["hours"].(int)
					limit := p.Args["limit"].(int)
					return deps.Detections.RecentFires(p.Context, hours, limit)
				},
			},
			"highRiskAreas": &graphql.Field{
				Type:        graphql.NewList(riskAreaType),
				Description: "Areas with the highest current risk scores",
				Args: graphql.FieldConfigArgument{
					"limit": &graphql.ArgumentConfig{Type: graphql.Int, DefaultValue: 20},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					limit := p.Args["limit"].(int)
					return deps.Detections.HighRiskAreas(p.Context, limit)
				},
			},
			"riskAt": &graphql.Field{
				Type:        riskAssessmentType,
				Description: "Wildfire risk score at a location",
				Args: graphql.FieldConfigArgument{
					"latitude":  &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
					"longitude": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
					"radius_km": &graphql.ArgumentConfig{Type: graphql.Float, DefaultValue: 10.0},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					loc := domain.GeoPoint{
						Latitude:  p.Args["latitude"].(float64),
						Longitude: p.Args["longitude"].(float64),
					}
					radius := p.Args["radius_km"].(float64)
					return deps.Risk.Predict(p.Context, loc, radius)
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
			return errBadRequest(c, "invalid GraphQL request body")
		}
		if req.Query == "" {
			return errBadRequest(c, "query is required")
		}

		result := graphql.Do(graphql.Params{
			Schema:         schema,
			RequestString:  req.Query,
			OperationName:  req.OperationName,
			VariableValues: req.Variables,
			Context:        c.UserContext(),
		})

		return c.JSON(result)
	}
}
