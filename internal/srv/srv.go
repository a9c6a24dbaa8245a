// MIT License
//
// Copyright 2019 Burst Apps Team
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to
// deal in the Software without restriction, including without limitation the
// rights to use, copy, modify, merge, publish, distribute, sublicense, and/or
// sell copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in
// all copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING
// FROM, OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS
// IN THE SOFTWARE.

package srv

import (
	"context"
	"crypto/subtle"
	"net/http"
	"time"

	jrpc "github.com/AdamSLevy/jsonrpc2/v11"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"

	"github.com/burst-apps-team/burstkit/internal/flag"
	_log "github.com/burst-apps-team/burstkit/internal/log"
)

var (
	log    = _log.New("srv")
	srvCtx = context.Background()
)

// APIVersion is the version of the JSON RPC API served by the daemon.
const APIVersion = "1"

// Start the server in its own goroutine. If ctx is done, the server is shut
// down and done is closed. If done is closed before ctx is done, the server
// failed.
func Start(ctx context.Context) (done <-chan struct{}) {
	log = _log.New("srv")
	srvCtx = ctx
	jrpc.DebugMethodFunc = flag.LogDebug

	srv := http.Server{Addr: flag.APIAddress, Handler: handler()}

	_done := make(chan struct{})
	go func() {
		var err error
		if flag.HasTLS {
			err = srv.ListenAndServeTLS(flag.TLSCertFile, flag.TLSKeyFile)
		} else {
			err = srv.ListenAndServe()
		}
		if err != http.ErrServerClosed {
			log.Errorf("srv.ListenAndServe(): %v", err)
		}
		close(_done)
	}()
	go func() {
		select {
		case <-ctx.Done():
		case <-_done:
			return
		}
		shutdownCtx, cancel := context.WithTimeout(
			context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Errorf("srv.Shutdown(): %v", err)
		}
	}()
	log.Infof("Listening on %v...", flag.APIAddress)
	return _done
}

func handler() http.Handler {
	jrpcHandler := jrpc.HTTPRequestHandler(jrpcMethods)
	var apiHandler http.HandlerFunc = func(w http.ResponseWriter,
		r *http.Request) {
		w.Header().Add(http.CanonicalHeaderKey("Burstkitd-Version"),
			flag.Revision)
		w.Header().Add(http.CanonicalHeaderKey("Burstkitd-Api-Version"),
			APIVersion)
		jrpcHandler(w, r)
	}

	mux := http.NewServeMux()
	mux.Handle("/", apiHandler)
	mux.Handle("/v1", apiHandler)
	mux.Handle("/metrics", promhttp.Handler())

	cors := cors.New(cors.Options{AllowedOrigins: []string{"*"}})
	return basicAuth(cors.Handler(mux))
}

func basicAuth(next http.Handler) http.Handler {
	if !flag.HasAuth {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		username, password, ok := r.BasicAuth()
		if !ok || !equal(username, flag.Username) ||
			!equal(password, flag.Password) {
			w.Header().Set("WWW-Authenticate", `Basic realm="burstkitd"`)
			http.Error(w, http.StatusText(http.StatusUnauthorized),
				http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func equal(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}

// apiContext bounds a request to the node by the API timeout and the
// lifetime of the server.
func apiContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(srvCtx, flag.APITimeout)
}
