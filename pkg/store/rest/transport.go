/*
Copyright (c) 2023 The Helmsman Authors. All Rights Reserved.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

// Package rest is the HTTP client for the external versioned content
// store and pipeline engine. It satisfies the store interfaces so the
// orchestration core never sees a transport detail.
package rest

import (
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"
)

const (
	defaultMaxIdleConnsPerHost   = 500
	defaultResponseHeaderTimeout = 60 * time.Second
	defaultDialTimeout           = 30 * time.Second
	defaultSmallInterval         = 600 * time.Second
	defaultLargeInterval         = 1200 * time.Second
)

// The httpClient is shared across every StoreClient; the net/http client
// is safe for concurrent use.
var (
	httpClient *http.Client
	transport  *http.Transport
)

// timeoutConn renews its deadlines around every read and write so a stuck
// store connection fails instead of hanging a request forever.
type timeoutConn struct {
	conn          net.Conn
	smallInterval time.Duration
	largeInterval time.Duration
}

func (c *timeoutConn) Read(b []byte) (n int, err error) {
	c.SetReadDeadline(time.Now().Add(c.smallInterval))
	n, err = c.conn.Read(b)
	c.SetReadDeadline(time.Now().Add(c.largeInterval))
	return n, err
}
func (c *timeoutConn) Write(b []byte) (n int, err error) {
	c.SetWriteDeadline(time.Now().Add(c.smallInterval))
	n, err = c.conn.Write(b)
	c.SetWriteDeadline(time.Now().Add(c.largeInterval))
	return n, err
}
func (c *timeoutConn) Close() error                       { return c.conn.Close() }
func (c *timeoutConn) LocalAddr() net.Addr                { return c.conn.LocalAddr() }
func (c *timeoutConn) RemoteAddr() net.Addr               { return c.conn.RemoteAddr() }
func (c *timeoutConn) SetDeadline(t time.Time) error      { return c.conn.SetDeadline(t) }
func (c *timeoutConn) SetReadDeadline(t time.Time) error  { return c.conn.SetReadDeadline(t) }
func (c *timeoutConn) SetWriteDeadline(t time.Time) error { return c.conn.SetWriteDeadline(t) }

var clientInit sync.Once

func initClient() {
	clientInit.Do(func() {
		httpClient = &http.Client{}
		transport = &http.Transport{
			MaxIdleConnsPerHost:   defaultMaxIdleConnsPerHost,
			ResponseHeaderTimeout: defaultResponseHeaderTimeout,
			Dial: func(network, address string) (net.Conn, error) {
				conn, err := net.DialTimeout(network, address, defaultDialTimeout)
				if err != nil {
					return nil, err
				}
				tc := &timeoutConn{conn, defaultSmallInterval, defaultLargeInterval}
				tc.SetReadDeadline(time.Now().Add(defaultLargeInterval))
				return tc, nil
			},
		}
		httpClient.Transport = transport
	})
}

type request struct {
	address string
	method  string
	uri     string
	params  url.Values
	body    io.Reader
}

func (r *request) generateURL() string {
	u := fmt.Sprintf("http://%s%s", r.address, r.uri)
	if len(r.params) > 0 {
		u = fmt.Sprintf("%s?%s", u, r.params.Encode())
	}
	return u
}

// execute sends the request and keeps the connection pool healthy: a
// transport error or a failed write-style request closes idle keep-alive
// connections that may carry half-sent bodies.
func execute(r *request) (*http.Response, error) {
	initClient()

	u := r.generateURL()
	httpRequest, err := http.NewRequest(r.method, u, r.body)
	if err != nil {
		return nil, fmt.Errorf("new request with method[%s] and url[%s] failed, %v", r.method, u, err)
	}
	if r.body != nil {
		httpRequest.Header.Set("Content-Type", "application/json")
	}

	httpResponse, err := httpClient.Do(httpRequest)
	if err != nil {
		transport.CloseIdleConnections()
		return nil, err
	}
	if httpResponse.StatusCode >= 400 &&
		(r.method == http.MethodPut || r.method == http.MethodPost) {
		transport.CloseIdleConnections()
	}
	return httpResponse, nil
}

func pathJoin(segments ...string) string {
	escaped := make([]string, 0, len(segments))
	for _, s := range segments {
		escaped = append(escaped, url.PathEscape(s))
	}
	return "/" + strings.Join(escaped, "/")
}
