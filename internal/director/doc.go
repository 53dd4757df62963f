// Package director renders the Cloudera Director bootstrap configuration and
// builds the director commands run on the launcher.
//
// Templates use Python-style named placeholders: %(name)s substitutes a value
// as text, %(name)d substitutes an integer, and %% is a literal percent sign.
package director
