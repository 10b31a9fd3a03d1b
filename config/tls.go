/*
 * Copyright (c) 2022 AlertAvert.com.  All rights reserved.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 *
 * Author: Marco Massenzio (marco@alertavert.com)
 */

package config

import (
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"os"
	"path/filepath"

	"google.golang.org/grpc/credentials"
)

const (
	// TlsConfigDirEnv is the env var which defines where the certs and
	// keys are stored.
	TlsConfigDirEnv = "TLS_CONFIG_DIR"

	// DefaultConfigDir is the default directory for the key material if
	// TLS is enabled, but TlsConfigDirEnv is not defined.
	DefaultConfigDir = "/etc/tsm/certs"

	// CAFile is the root CA certificate (can be self-signed).
	CAFile = "ca.pem"

	// ServerCertFile is the server certificate (with the valid host names).
	ServerCertFile = "server.pem"

	// ServerKeyFile is the private signing key for ServerCertFile.
	ServerKeyFile = "server-key.pem"
)

// CertsDir returns TlsConfigDirEnv if set, DefaultConfigDir otherwise.
func CertsDir() string {
	if dir := os.Getenv(TlsConfigDirEnv); dir != "" {
		return dir
	}
	return DefaultConfigDir
}

// ServerTLSCredentials loads the server certificate/key and the root CA
// from dir (see CertsDir) and returns gRPC transport credentials that
// verify a client certificate against the CA when one is presented, but
// do not require one -- grounded on the teacher's grpc_tls_test.go
// (Config.TlsEnabled/TlsCerts), generalized from a single "certs
// directory" flag to the two named pieces grpc/credentials needs.
func ServerTLSCredentials(dir string) (credentials.TransportCredentials, error) {
	cert, err := tls.LoadX509KeyPair(
		filepath.Join(dir, ServerCertFile),
		filepath.Join(dir, ServerKeyFile))
	if err != nil {
		return nil, fmt.Errorf("loading server cert/key: %w", err)
	}

	caPem, err := os.ReadFile(filepath.Join(dir, CAFile))
	if err != nil {
		return nil, fmt.Errorf("reading CA cert: %w", err)
	}
	pool := x509.NewCertPool()
	if !pool.AppendCertsFromPEM(caPem) {
		return nil, fmt.Errorf("failed to parse CA cert in %s", dir)
	}

	return credentials.NewTLS(&tls.Config{
		Certificates: []tls.Certificate{cert},
		ClientCAs:    pool,
		ClientAuth:   tls.VerifyClientCertIfGiven,
		MinVersion:   tls.VersionTLS12,
	}), nil
}
