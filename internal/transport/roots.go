package transport

import (
	"crypto/x509"
	"sync"

	"golang.org/x/crypto/x509roots/fallback/bundle"
)

// bundledRoots is the compiled-in Mozilla NSS root set used when
// Options.RootCAs is nil. It does not depend on the host trust store or on
// SSL_CERT_FILE / SSL_CERT_DIR.
var bundledRoots = sync.OnceValue(func() *x509.CertPool {
	pool := x509.NewCertPool()
	for root := range bundle.Roots() {
		cert, err := x509.ParseCertificate(root.Certificate)
		if err != nil {
			panic("transport: bundled root certificate: " + err.Error())
		}
		if root.Constraint == nil {
			pool.AddCert(cert)
		} else {
			pool.AddCertWithConstraint(cert, root.Constraint)
		}
	}
	return pool
})
