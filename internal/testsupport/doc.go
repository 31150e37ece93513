// Package testsupport provides shared fixtures for engine tests: generated
// collection documents and temp-directory configs.
package testsupport
