// Package destroy tears a stack down: the director terminates the cluster it
// bootstrapped, then the launcher instance and the CloudFormation stack are
// deleted. There is no partial-failure recovery; a failed teardown is
// finished by hand or by running it again once the cause is fixed.
package destroy
