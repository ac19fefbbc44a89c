package validation

import (
	"fmt"

	apperrors "pawmatch-workers/internal/common/errors"
	"pawmatch-workers/internal/matching"

	"github.com/xeipuuv/gojsonschema"
)

const triStateSchema = `{"enum": [true, false, null, "yes", "no", "unknown", "true", "false", ""]}`

const adopterProfileSchema = `{
  "type": "object",
  "required": ["userId"],
  "properties": {
    "userId":          {"type": "string", "minLength": 1},
    "email":           {"type": "string"},
    "firstName":       {"type": "string"},
    "homeType":        {"enum": ["", "house", "apartment", "condo", "townhouse", "farm", "other"]},
    "hasYard":         {"type": "boolean"},
    "yardFenced":      {"type": "boolean"},
    "hasChildren":     {"type": "boolean"},
    "hasOtherPets":    {"type": "boolean"},
    "otherPets":       {"type": ["array", "null"], "items": {"$ref": "#/definitions/species"}},
    "hoursAlone":      {"type": ["integer", "null"], "minimum": 0, "maximum": 24},
    "exerciseMinutes": {"type": ["integer", "null"], "minimum": 0, "maximum": 1440},
    "experienceLevel": {"enum": ["", "first_time", "some_experience", "experienced", "expert"]},
    "activityLevel":   {"$ref": "#/definitions/activity"},
    "requirements": {
      "type": ["object", "null"],
      "properties": {
        "goodWithChildren": {"type": "boolean"},
        "goodWithDogs":     {"type": "boolean"},
        "goodWithCats":     {"type": "boolean"},
        "houseTrained":     {"type": "boolean"},
        "hypoallergenic":   {"type": "boolean"},
        "specialNeedsOk":   {"type": "boolean"}
      }
    },
    "preferences": {
      "type": ["object", "null"],
      "properties": {
        "species": {"type": ["array", "null"], "items": {"$ref": "#/definitions/species"}},
        "sizes":   {"type": ["array", "null"], "items": {"$ref": "#/definitions/size"}},
        "ages":    {"type": ["array", "null"], "items": {"$ref": "#/definitions/age"}}
      }
    },
    "location": {
      "type": ["object", "null"],
      "required": ["latitude", "longitude"],
      "properties": {
        "latitude":  {"type": "number", "minimum": -90, "maximum": 90},
        "longitude": {"type": "number", "minimum": -180, "maximum": 180},
        "zipCode":   {"type": "string"}
      }
    }
  },
  "definitions": ` + sharedDefinitions + `
}`

const candidateSchema = `{
  "type": "object",
  "required": ["id"],
  "properties": {
    "id":               {"type": "string", "minLength": 1},
    "name":             {"type": "string"},
    "species":          {"$ref": "#/definitions/species"},
    "breed":            {"type": "string"},
    "size":             {"$ref": "#/definitions/size"},
    "age":              {"$ref": "#/definitions/age"},
    "energyLevel":      {"$ref": "#/definitions/activity"},
    "goodWithChildren": ` + triStateSchema + `,
    "goodWithDogs":     ` + triStateSchema + `,
    "goodWithCats":     ` + triStateSchema + `,
    "hypoallergenic":   ` + triStateSchema + `,
    "houseTrained":     {"type": "boolean"},
    "specialNeeds":     {"type": "boolean"},
    "spayedNeutered":   {"type": "boolean"},
    "urgent":           {"type": "boolean"},
    "urgencyReason":    {"type": "string"},
    "daysInShelter":    {"type": ["integer", "null"], "minimum": 0},
    "distanceMiles":    {"type": ["number", "null"], "minimum": 0}
  },
  "definitions": ` + sharedDefinitions + `
}`

const sharedDefinitions = `{
    "species":  {"enum": ["dog", "cat", "rabbit", "bird", "small_furry", "scales_fins_other"]},
    "size":     {"enum": ["", "small", "medium", "large", "extra_large"]},
    "age":      {"enum": ["", "baby", "young", "adult", "senior"]},
    "activity": {"enum": ["", "low", "moderate", "high"]}
  }`

var (
	profileSchema         = MustCompile("adopter profile", adopterProfileSchema)
	candidateRecordSchema = MustCompile("candidate", candidateSchema)
)

// ValidateAdopterProfile checks a decoded profile document (as received in job
// variables or a request body) before it is bound to matching.AdopterProfile.
func ValidateAdopterProfile(document interface{}) (*ValidationResult, error) {
	return profileSchema.Validate(document)
}

// ValidateCandidates checks every candidate document. Field paths are prefixed
// with the candidate's position, e.g. "candidates[2].size".
func ValidateCandidates(documents []interface{}) (*ValidationResult, error) {
	out := &ValidationResult{Valid: true}
	for i, doc := range documents {
		res, err := candidateRecordSchema.Validate(doc)
		if err != nil {
			return nil, err
		}
		for _, e := range res.Errors {
			field := fmt.Sprintf("candidates[%d]", i)
			if e.Field != gojsonschema.STRING_ROOT_SCHEMA_PROPERTY {
				field += "." + e.Field
			}
			out.add(field, e.Code, e.Message)
		}
	}
	return out, nil
}

// CheckProfile applies the cross-field rules a schema cannot express.
func CheckProfile(p matching.AdopterProfile) *ValidationResult {
	vr := &ValidationResult{Valid: true}

	if p.YardFenced && !p.HasYard {
		vr.add("yardFenced", "INCONSISTENT", "a fenced yard requires hasYard")
	}
	if len(p.OtherPets) > 0 && !p.HasOtherPets {
		vr.add("otherPets", "INCONSISTENT", "otherPets listed but hasOtherPets is false")
	}
	if p.Email != "" && !ValidateEmail(p.Email) {
		vr.add("email", "INVALID_FORMAT", "email address is malformed")
	}

	return vr
}

// CheckCandidates rejects duplicate IDs, which would make ranks ambiguous.
func CheckCandidates(candidates []matching.CandidateRecord) *ValidationResult {
	vr := &ValidationResult{Valid: true}
	seen := make(map[string]int, len(candidates))
	for i, c := range candidates {
		if first, ok := seen[c.ID]; ok {
			vr.add(fmt.Sprintf("candidates[%d].id", i), "DUPLICATE", fmt.Sprintf("id %q already used by candidates[%d]", c.ID, first))
			continue
		}
		seen[c.ID] = i
	}
	return vr
}

// ProfileError runs the schema and cross-field checks on a bound profile. It
// returns a non-retryable INVALID_ADOPTER_PROFILE error, or nil.
func ProfileError(p matching.AdopterProfile) error {
	vr, err := ValidateAdopterProfile(p)
	if err != nil {
		return apperrors.NewInternalError(err)
	}
	vr.Merge(CheckProfile(p))
	if vr.Valid {
		return nil
	}
	return apperrors.NewInvalidAdopterProfileError(vr.Summary())
}

// CandidatesError is ProfileError for a candidate list.
func CandidatesError(candidates []matching.CandidateRecord) error {
	docs := make([]interface{}, len(candidates))
	for i := range candidates {
		docs[i] = candidates[i]
	}
	vr, err := ValidateCandidates(docs)
	if err != nil {
		return apperrors.NewInternalError(err)
	}
	vr.Merge(CheckCandidates(candidates))
	if vr.Valid {
		return nil
	}
	return apperrors.NewInvalidCandidateError(vr.Summary())
}
