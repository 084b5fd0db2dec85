// Package awsclient loads AWS configuration and exposes the narrow service
// interfaces the rest of eksops depends on.
//
// Each interface lists only the SDK operations a component calls, so tests
// substitute the function-field fakes in the mock subpackage instead of
// talking to AWS.
package awsclient
