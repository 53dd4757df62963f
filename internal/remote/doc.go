// Package remote describes commands run on stack hosts and the executor that
// runs them.
//
// Commands are built with [Run] and [Sudo] and always execute in a login
// shell, so PATH and JAVA_HOME exports appended to ~/.bash_profile by earlier
// steps are visible to later ones. [Parallel] fans one operation out across
// hosts with all-or-nothing semantics.
package remote
