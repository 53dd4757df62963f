// Package keygen generates throwaway SSH key pairs.
//
// Keys are produced as OpenSSH-format private keys and authorized_keys-format
// public keys. They back the in-process SSH servers used by transport tests.
package keygen
