package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/armory-backend/internal/data/repos"
	"github.com/yungbote/armory-backend/internal/platform/apierr"
	"github.com/yungbote/armory-backend/internal/services"
)

// parseID reads a positive integer path parameter.
func parseID(c *gin.Context, name, msg string) (int64, error) {
	raw := strings.TrimSpace(c.Param(name))
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, apierr.BadRequest(services.CodeInvalidID, msg)
	}
	return id, nil
}

func parseMaterialID(c *gin.Context, name string) (int64, error) {
	return parseID(c, name, "Invalid ID format")
}

func parseWeaponID(c *gin.Context) (int64, error) {
	return parseID(c, "id", "Invalid weapon ID format")
}

// parseIncludes accepts a comma separated include list, e.g.
// "weapons,sub_materials".
func parseIncludes(raw string) (services.MaterialIncludes, error) {
	var inc services.MaterialIncludes
	for _, part := range strings.Split(raw, ",") {
		switch strings.ToLower(strings.TrimSpace(part)) {
		case "":
		case "weapons":
			inc.Weapons = true
		case "sub_materials", "submaterials":
			inc.SubMaterials = true
		default:
			return inc, apierr.BadRequest(services.CodeInvalidInclude, "Invalid include parameter")
		}
	}
	return inc, nil
}

// parseMaterialFilter reads the list query. Unknown parameters are ignored;
// malformed values of known ones are rejected.
func parseMaterialFilter(c *gin.Context) (repos.MaterialFilter, error) {
	var f repos.MaterialFilter
	ints := []struct {
		key string
		dst **int64
	}{
		{"power_level_gt", &f.PowerLevelGT},
		{"power_level_lt", &f.PowerLevelLT},
		{"qty_gt", &f.QtyGT},
	}
	for _, p := range ints {
		raw := strings.TrimSpace(c.Query(p.key))
		if raw == "" {
			continue
		}
		v, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return f, apierr.BadRequest(services.CodeInvalidInput, fmt.Sprintf("Invalid value for %s", p.key))
		}
		*p.dst = &v
	}
	f.NameContains = strings.TrimSpace(c.Query("name"))

	if raw := strings.TrimSpace(c.Query("sort")); raw != "" {
		field, dir, _ := strings.Cut(raw, ":")
		field = strings.ToLower(strings.TrimSpace(field))
		dir = strings.ToLower(strings.TrimSpace(dir))
		if !repos.IsMaterialSortField(field) || (dir != "" && dir != "asc" && dir != "desc") {
			return f, apierr.BadRequest(services.CodeInvalidInput, "Invalid sort parameter")
		}
		f.SortField = field
		f.SortDesc = dir == "desc"
	}
	return f, nil
}

var errInvalidDataType = apierr.BadRequest(services.CodeInvalidInput, "Invalid data type for power_level or quantity")

// decodeMaterialPatch type-checks each known field of a PUT body. Absent keys
// are left unset, explicit nulls clear nullable fields.
func decodeMaterialPatch(body []byte) (services.MaterialPatch, error) {
	var patch services.MaterialPatch
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil {
		return patch, apierr.BadRequest(services.CodeInvalidInput, "Invalid JSON body")
	}
	if v, ok := raw["name"]; ok {
		var name string
		if err := json.Unmarshal(v, &name); err != nil {
			return patch, apierr.BadRequest(services.CodeInvalidInput, "Invalid data type for name")
		}
		patch.Name = &name
	}
	for key, dst := range map[string]*services.OptionalInt{
		"power_level": &patch.PowerLevel,
		"base_power":  &patch.BasePower,
	} {
		v, ok := raw[key]
		if !ok {
			continue
		}
		n, isNull, err := decodeInt(v)
		if err != nil {
			return patch, errInvalidDataType
		}
		dst.Set = true
		if !isNull {
			dst.Value = &n
		}
	}
	if v, ok := raw["qty"]; ok {
		n, isNull, err := decodeInt(v)
		if err != nil || isNull {
			return patch, errInvalidDataType
		}
		patch.Qty = &n
	}
	return patch, nil
}

var errNotInteger = errors.New("not an integer")

// decodeInt accepts JSON integers and null. Strings, floats with a fraction
// and other types are rejected.
func decodeInt(v json.RawMessage) (int64, bool, error) {
	v = bytes.TrimSpace(v)
	if bytes.Equal(v, []byte("null")) {
		return 0, true, nil
	}
	if len(v) == 0 || (v[0] != '-' && (v[0] < '0' || v[0] > '9')) {
		return 0, false, errNotInteger
	}
	dec := json.NewDecoder(bytes.NewReader(v))
	dec.UseNumber()
	var num json.Number
	if err := dec.Decode(&num); err != nil {
		return 0, false, errNotInteger
	}
	n, err := num.Int64()
	if err != nil {
		return 0, false, errNotInteger
	}
	return n, false, nil
}
