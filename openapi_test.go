package main_test

import (
	"context"
	"net/http"

	"github.com/getkin/kin-openapi/openapi3"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("OpenAPI document", func() {
	var doc *openapi3.T

	BeforeEach(func() {
		loader := openapi3.NewLoader()
		var err error
		doc, err = loader.LoadFromFile("api/openapi.yml")
		Expect(err).NotTo(HaveOccurred())
	})

	It("should be a valid OpenAPI 3 document", func() {
		Expect(doc.Validate(context.Background())).To(Succeed())
	})

	It("should document the incident endpoints", func() {
		for _, path := range []string{
			"/incidents",
			"/incidents/{id}",
			"/incidents/{id}/status",
			"/incidents/{id}/assign",
			"/incidents/{id}/parts",
			"/report",
			"/api/stats",
			"/dashboard",
			"/search",
		} {
			Expect(doc.Paths.Find(path)).NotTo(BeNil(), "missing path %s", path)
		}
	})

	It("should document the auth endpoints", func() {
		Expect(doc.Paths.Find("/auth/login").Post).NotTo(BeNil())
		Expect(doc.Paths.Find("/auth/register").Post).NotTo(BeNil())
		Expect(doc.Paths.Find("/auth/logout").Post).NotTo(BeNil())
	})

	It("should apply the session cookie scheme by default", func() {
		Expect(doc.Security).NotTo(BeEmpty())
		Expect(doc.Security[0]).To(HaveKey("sessionCookie"))

		login := doc.Paths.Find("/auth/login").Post
		Expect(login.Security).NotTo(BeNil())
		Expect(*login.Security).To(BeEmpty())
	})

	It("should describe error responses for incident lookup", func() {
		op := doc.Paths.Find("/incidents/{id}").Get
		Expect(op).NotTo(BeNil())
		Expect(op.Responses.Status(http.StatusNotFound)).NotTo(BeNil())
	})
})
