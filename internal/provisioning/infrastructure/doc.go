// Package infrastructure provisions the CloudFormation network stack (VPC,
// subnet and security group) that every instance of an eggo stack lives in.
package infrastructure
