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

package server_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"

	"github.com/massenz/tsm-go/logging"
	"github.com/massenz/tsm-go/server"
	"github.com/massenz/tsm-go/storage"
)

var _ = Describe("Machine introspection handlers", func() {
	var (
		req    *http.Request
		writer *httptest.ResponseRecorder
		router interface {
			ServeHTTP(http.ResponseWriter, *http.Request)
		}
	)

	BeforeEach(func() {
		_, reg := buildDoor()
		srv := server.NewServer(reg, storage.NewInMemoryStore(), logging.NewNullLog("server"))
		router = srv.NewRouter()
		writer = httptest.NewRecorder()
	})

	Context("GET /api/v1/machines", func() {
		It("lists every registered machine name", func() {
			req = httptest.NewRequest(http.MethodGet, server.MachinesEndpoint, nil)
			router.ServeHTTP(writer, req)

			Expect(writer.Code).To(Equal(http.StatusOK))
			var names []string
			Expect(json.NewDecoder(writer.Body).Decode(&names)).ToNot(HaveOccurred())
			Expect(names).To(ConsistOf("door"))
		})
	})

	Context("GET /api/v1/machines/{machine}", func() {
		It("dumps the named machine's transition table", func() {
			endpoint := server.MachinesEndpoint + "/door"
			req = httptest.NewRequest(http.MethodGet, endpoint, nil)
			router.ServeHTTP(writer, req)

			Expect(writer.Code).To(Equal(http.StatusOK))
			var resp server.MachineResponse
			Expect(json.NewDecoder(writer.Body).Decode(&resp)).ToNot(HaveOccurred())
			Expect(resp.Name).To(Equal("door"))
			Expect(resp.Transitions).ToNot(BeEmpty())
		})

		It("returns 404 for an unregistered machine", func() {
			endpoint := server.MachinesEndpoint + "/nope"
			req = httptest.NewRequest(http.MethodGet, endpoint, nil)
			router.ServeHTTP(writer, req)
			Expect(writer.Code).To(Equal(http.StatusNotFound))
		})
	})
})
