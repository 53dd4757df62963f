package director

import (
	_ "embed"
)

//go:embed templates/director.conf
var defaultDirectorTemplate string

//go:embed templates/cloudformation.json
var defaultCloudFormationTemplate string

// DefaultDirectorTemplate returns the embedded bootstrap template.
func DefaultDirectorTemplate() string {
	return defaultDirectorTemplate
}

// DefaultCloudFormationTemplate returns the embedded network stack template.
// It takes one parameter, AvailabilityZone, and exports SubnetId and
// SecurityGroupId.
func DefaultCloudFormationTemplate() string {
	return defaultCloudFormationTemplate
}
