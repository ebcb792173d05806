package gcpidentity

import (
	"errors"
	"net/http"

	"google.golang.org/api/googleapi"
)

func isAccessDenied(err error) bool {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		return apiErr.Code == http.StatusForbidden || apiErr.Code == http.StatusUnauthorized
	}
	return false
}
