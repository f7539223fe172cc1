package api

import "github.com/rotafield/rotafield-api/store"

var (
	errorMessageMap = map[int64]string{
		999:  "internal server error",
		1001: "invalid authorization format",
		1003: "invalid token",
		1004: "wrong email or password",
		1005: "this account has been deactivated",

		1010: "invalid parameters",
		1011: "cannot parse request",

		1100: "this email has already been registered",
		1101: "account not found",

		1200: store.ErrVisitNotFound.Error(),
		1201: store.ErrOpenVisitExists.Error(),
		1202: "the transition is not allowed from the current status",
		1203: "a justification is required to confirm arrival this far from the point",
		1204: "the assignee already has a route in progress",
		1205: "visit does not belong to your team",

		1300: store.ErrPOINotFound.Error(),
		1301: "no point matches the pivot query",

		1400: "the distribution target is outside your reach",
		1401: store.ErrNothingToDistribute.Error(),

		1500: store.ErrCustomerNotFound.Error(),
	}

	errorInternalServer             = errorJSON(999)
	errorInvalidAuthorizationFormat = errorJSON(1001)
	errorInvalidToken               = errorJSON(1003)
	errorWrongCredential            = errorJSON(1004)
	errorAccountDeactivated         = errorJSON(1005)

	errorInvalidParameters  = errorJSON(1010)
	errorCannotParseRequest = errorJSON(1011)

	errorAccountTaken    = errorJSON(1100)
	errorAccountNotFound = errorJSON(1101)

	errorUnknownVisit      = errorJSON(1200)
	errorOpenVisitExists   = errorJSON(1201)
	errorInvalidTransition = errorJSON(1202)
	errorGeofenceViolation = errorJSON(1203)
	errorActiveRouteExists = errorJSON(1204)
	errorVisitNotVisible   = errorJSON(1205)

	errorUnknownPOI    = errorJSON(1300)
	errorPivotNotFound = errorJSON(1301)

	errorDistributionDenied  = errorJSON(1400)
	errorNothingToDistribute = errorJSON(1401)

	errorUnknownCustomer = errorJSON(1500)
)

type ErrorResponse struct {
	Code    int64  `json:"code"`
	Message string `json:"message"`
}

// errorJSON converts an error code to a standardized error object
func errorJSON(code int64) ErrorResponse {
	var message string
	if msg, ok := errorMessageMap[code]; ok {
		message = msg
	} else {
		message = "unknown"
	}

	return ErrorResponse{
		Code:    code,
		Message: message,
	}
}
