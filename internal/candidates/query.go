// internal/candidates/query.go
package candidates

import (
	"fmt"

	"pawmatch-workers/internal/matching"
)

// Query narrows the adoptable-animal index for one adopter.
type Query struct {
	Species     []matching.Species
	Location    *matching.Location
	RadiusMiles int
	Limit       int
	ExcludeIDs  []string
}

// QueryFor derives the retrieval query from an adopter profile.
func QueryFor(profile matching.AdopterProfile, radiusMiles, limit int) Query {
	return Query{
		Species:     profile.Preferences.Species,
		Location:    profile.Location,
		RadiusMiles: radiusMiles,
		Limit:       limit,
	}
}

// BuildSearchBody renders q as an Elasticsearch bool query. Results are
// ordered by distance when a location is known so the hit's sort value can be
// read back as the distance in miles.
func BuildSearchBody(q Query) map[string]interface{} {
	filterClauses := []interface{}{
		map[string]interface{}{"term": map[string]interface{}{"status": "adoptable"}},
	}

	if len(q.Species) > 0 {
		species := make([]string, len(q.Species))
		for i, s := range q.Species {
			species[i] = string(s)
		}
		filterClauses = append(filterClauses, map[string]interface{}{
			"terms": map[string]interface{}{"species": species},
		})
	}

	geo := q.Location != nil && q.RadiusMiles > 0
	if geo {
		filterClauses = append(filterClauses, map[string]interface{}{
			"geo_distance": map[string]interface{}{
				"distance": fmt.Sprintf("%dmi", q.RadiusMiles),
				"location": geoPoint(q.Location),
			},
		})
	}

	boolQuery := map[string]interface{}{
		"filter": filterClauses,
	}
	if len(q.ExcludeIDs) > 0 {
		boolQuery["must_not"] = []interface{}{
			map[string]interface{}{"ids": map[string]interface{}{"values": q.ExcludeIDs}},
		}
	}

	body := map[string]interface{}{
		"query": map[string]interface{}{"bool": boolQuery},
	}

	if geo {
		body["sort"] = []interface{}{
			map[string]interface{}{
				"_geo_distance": map[string]interface{}{
					"location": geoPoint(q.Location),
					"order":    "asc",
					"unit":     "mi",
				},
			},
		}
	} else {
		body["sort"] = []interface{}{
			map[string]interface{}{"daysInShelter": map[string]interface{}{"order": "desc", "missing": "_last", "unmapped_type": "integer"}},
			map[string]interface{}{"_doc": "asc"},
		}
	}

	return body
}

func geoPoint(l *matching.Location) map[string]float64 {
	return map[string]float64{"lat": l.Latitude, "lon": l.Longitude}
}
