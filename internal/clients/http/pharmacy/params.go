package pharmacy

import (
	"fmt"
	"net/url"

	"github.com/oapi-codegen/runtime"
)

// pathID renders an integer path parameter with OpenAPI simple style.
func pathID(name string, id int64) (string, error) {
	if id <= 0 {
		return "", fmt.Errorf("%s must be positive, got %d", name, id)
	}
	return runtime.StyleParamWithLocation("simple", false, name, runtime.ParamLocationPath, id)
}

// formQuery renders a query parameter with OpenAPI form style.
func formQuery(name string, value any) (url.Values, error) {
	styled, err := runtime.StyleParamWithLocation("form", true, name, runtime.ParamLocationQuery, value)
	if err != nil {
		return nil, fmt.Errorf("style %s: %w", name, err)
	}
	return url.ParseQuery(styled)
}
