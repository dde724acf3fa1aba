// Package file implements a source.Provider that reads signing certificates
// from a directory tree. Package "com.example.app" resolves to
// <root>/com.example.app/, and every .pem, .crt, .cer or .der file in it is
// decoded in lexical file-name order.
package file
