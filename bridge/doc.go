// Package bridge exposes the signing-info boundary call that an application
// layer invokes on its host runtime. A Bridge is bound to one certificate
// provider and to the running package's own name; it answers the
// "getSigningInfo" method with the digest report of that package.
//
// SigningInfo returns a tagged result (report or error). GetSigningInfo keeps
// the string surface existing callers expect: the report text, or a message
// prefixed with "Error: ". KindOf classifies errors into the ErrorKind
// taxonomy.
package bridge
