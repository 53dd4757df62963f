package aws

import (
	"errors"
	"strings"

	"github.com/aws/smithy-go"
)

// isAPIErrorCode checks if the error is an AWS API error with one of the given codes.
func isAPIErrorCode(err error, codes ...string) bool {
	if err == nil {
		return false
	}

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		for _, code := range codes {
			if apiErr.ErrorCode() == code {
				return true
			}
		}
	}
	return false
}

// IsInstanceNotFound checks if an error indicates an unknown instance ID.
func IsInstanceNotFound(err error) bool {
	return isAPIErrorCode(err, "InvalidInstanceID.NotFound", "InvalidInstanceID.Malformed")
}

// IsStackNotFound checks if a CloudFormation error reports a missing stack.
// CloudFormation answers with a generic ValidationError in that case.
func IsStackNotFound(err error) bool {
	var apiErr smithy.APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	return apiErr.ErrorCode() == "ValidationError" &&
		strings.Contains(apiErr.ErrorMessage(), "does not exist")
}

// IsStackAlreadyExists checks if a create call raced with an existing stack.
func IsStackAlreadyExists(err error) bool {
	return isAPIErrorCode(err, "AlreadyExistsException")
}

// IsAuthFailure checks if an error indicates invalid or expired credentials.
func IsAuthFailure(err error) bool {
	return isAPIErrorCode(err,
		"AuthFailure",
		"InvalidClientTokenId",
		"SignatureDoesNotMatch",
		"ExpiredToken",
		"UnrecognizedClientException",
	)
}
