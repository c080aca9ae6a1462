// Package versioning parses the X-API-Version request header
package versioning

import (
	"fmt"
	"strconv"
	"strings"
)

// Header carries the API version a client was written against
const Header = "X-API-Version"

// Current is the version served by this build
var Current = APIVersion{Major: 1, Minor: 0}

type APIVersion struct {
	Major int `json:"major"`
	Minor int `json:"minor"`
}

// String renders the version as "v1.0"
func (v APIVersion) String() string {
	return fmt.Sprintf("v%d.%d", v.Major, v.Minor)
}

// Compatible reports whether a client on v can talk to a server on server:
// same major, and no newer minor than the server knows.
func (v APIVersion) Compatible(server APIVersion) bool {
	return v.Major == server.Major && v.Minor <= server.Minor
}

// ParseVersion "v1.2" -> APIVersion{1, 2}. An empty header means Current.
func ParseVersion(header string) (APIVersion, error) {
	header = strings.TrimSpace(header)
	if header == "" {
		return Current, nil
	}

	clean := strings.TrimPrefix(strings.ToLower(header), "v")
	parts := strings.Split(clean, ".")
	if len(parts) > 2 {
		return APIVersion{}, fmt.Errorf("malformed API version %q", header)
	}

	major, err := strconv.Atoi(parts[0])
	if err != nil || major < 0 {
		return APIVersion{}, fmt.Errorf("malformed API version %q", header)
	}
	minor := 0
	if len(parts) == 2 {
		minor, err = strconv.Atoi(parts[1])
		if err != nil || minor < 0 {
			return APIVersion{}, fmt.Errorf("malformed API version %q", header)
		}
	}

	return APIVersion{Major: major, Minor: minor}, nil
}
