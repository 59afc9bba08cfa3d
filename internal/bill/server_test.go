package bill

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/onsi/gomega/ghttp"

	"github.com/zombor/splitbill/internal/parsing"
)

var _ = Describe("Server", func() {
	const allowedOrigin = "http://localhost:3000"

	var (
		db          *mockDB
		recognizer  *mockRecognizer
		server      *Server
		ghttpServer *ghttp.Server
	)

	BeforeEach(func() {
		db = newMockDB()
		recognizer = newMockRecognizer()
	})

	JustBeforeEach(func() {
		service := NewServiceWithDeps(db, recognizer, parsing.NewHeuristic(nil, nil),
			&mockIDGenerator{id: "bill-1"}, &mockTimeSource{}, nil)
		server = NewServer(service, []string{allowedOrigin}, nil)
		ghttpServer = ghttp.NewServer()
		ghttpServer.AllowUnhandledRequests = false
		ghttpServer.AppendHandlers(server.ServeHTTP)
	})

	AfterEach(func() {
		ghttpServer.Close()
	})

	readBody := func(resp *http.Response) string {
		defer resp.Body.Close()
		body, err := io.ReadAll(resp.Body)
		Expect(err).NotTo(HaveOccurred())
		return string(body)
	}

	uploadImage := func(field, filename string) *http.Response {
		var b bytes.Buffer
		writer := multipart.NewWriter(&b)
		part, err := writer.CreateFormFile(field, filename)
		Expect(err).NotTo(HaveOccurred())
		part.Write([]byte("fake image data"))
		Expect(writer.Close()).To(Succeed())

		resp, err := http.Post(ghttpServer.URL()+"/api/receipt", writer.FormDataContentType(), &b)
		Expect(err).NotTo(HaveOccurred())
		return resp
	}

	Describe("handleIndex", func() {
		It("should report that the API is running", func() {
			resp, err := http.Get(ghttpServer.URL() + "/")
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.StatusCode).To(Equal(http.StatusOK))
			Expect(readBody(resp)).To(Equal("SplitBill API is running."))
		})
	})

	Describe("handleScanReceipt", func() {
		When("the upload is read", func() {
			It("should return the text lines and the parsed receipt", func() {
				resp := uploadImage("image", "receipt.jpg")
				Expect(resp.StatusCode).To(Equal(http.StatusOK))
				Expect(resp.Header.Get("Content-Type")).To(Equal("application/json"))

				var result struct {
					Text   []string       `json:"text"`
					Parsed map[string]any `json:"parsed"`
				}
				Expect(json.Unmarshal([]byte(readBody(resp)), &result)).To(Succeed())
				Expect(result.Text).To(HaveLen(6))
				Expect(result.Parsed).To(HaveKeyWithValue("subtotal", 51000.0))
				Expect(result.Parsed).To(HaveKeyWithValue("taxPercent", 10.0))
				Expect(result.Parsed).To(HaveKeyWithValue("total", 56100.0))
				Expect(result.Parsed).To(HaveKey("rawText"))
				Expect(result.Parsed).NotTo(HaveKey("Dropped"))
			})

			It("should take the content type from the file extension", func() {
				uploadImage("image", "receipt.HEIC").Body.Close()
				Expect(recognizer.contentType).To(Equal("image/heic"))
			})
		})

		When("the image field is missing", func() {
			It("should return Bad Request", func() {
				resp := uploadImage("file", "receipt.jpg")
				Expect(resp.StatusCode).To(Equal(http.StatusBadRequest))
				Expect(readBody(resp)).To(MatchJSON(`{"error":"No image provided"}`))
			})
		})

		When("OCR fails", func() {
			BeforeEach(func() {
				recognizer.err = errors.New("ocr read failed")
			})

			It("should return Internal Server Error", func() {
				resp := uploadImage("image", "receipt.jpg")
				Expect(resp.StatusCode).To(Equal(http.StatusInternalServerError))
				Expect(readBody(resp)).To(MatchJSON(`{"error":"Failed to extract text"}`))
			})
		})
	})

	Describe("handleShareBill", func() {
		post := func(body string) *http.Response {
			resp, err := http.Post(ghttpServer.URL()+"/api/share", "application/json", strings.NewReader(body))
			Expect(err).NotTo(HaveOccurred())
			return resp
		}

		When("the bill is valid", func() {
			It("should return Created with the new ID", func() {
				resp := post(`{"billData":{"total":36000},"people":[{"name":"Ani"}]}`)
				Expect(resp.StatusCode).To(Equal(http.StatusCreated))
				Expect(readBody(resp)).To(MatchJSON(`{"id":"bill-1"}`))
				Expect(db.bills).To(HaveKey("bill-1"))
			})
		})

		When("the body is not JSON", func() {
			It("should return Bad Request", func() {
				resp := post(`billData=1`)
				Expect(resp.StatusCode).To(Equal(http.StatusBadRequest))
				resp.Body.Close()
			})
		})

		When("people is not an array", func() {
			It("should return Bad Request", func() {
				resp := post(`{"billData":{},"people":"Ani"}`)
				Expect(resp.StatusCode).To(Equal(http.StatusBadRequest))
				Expect(readBody(resp)).To(ContainSubstring("people must be an array"))
			})
		})

		When("saving fails", func() {
			BeforeEach(func() {
				db.saveErr = errors.New("disk full")
			})

			It("should return Internal Server Error", func() {
				resp := post(`{"billData":{},"people":[]}`)
				Expect(resp.StatusCode).To(Equal(http.StatusInternalServerError))
				Expect(readBody(resp)).To(MatchJSON(`{"error":"Failed to share bill"}`))
			})
		})
	})

	Describe("handleGetSharedBill", func() {
		When("the bill exists", func() {
			BeforeEach(func() {
				db.bills["bill-1"] = &SharedBill{
					ID:       "bill-1",
					BillData: json.RawMessage(`{"total":36000}`),
					People:   json.RawMessage(`["Ani"]`),
				}
			})

			It("should return the stored bill", func() {
				resp, err := http.Get(ghttpServer.URL() + "/api/share/bill-1")
				Expect(err).NotTo(HaveOccurred())
				Expect(resp.StatusCode).To(Equal(http.StatusOK))

				var bill map[string]any
				Expect(json.Unmarshal([]byte(readBody(resp)), &bill)).To(Succeed())
				Expect(bill).To(HaveKeyWithValue("id", "bill-1"))
				Expect(bill).To(HaveKeyWithValue("billData", map[string]any{"total": 36000.0}))
				Expect(bill).To(HaveKeyWithValue("people", []any{"Ani"}))
			})
		})

		When("the bill does not exist", func() {
			It("should return Not Found", func() {
				resp, err := http.Get(ghttpServer.URL() + "/api/share/missing")
				Expect(err).NotTo(HaveOccurred())
				Expect(resp.StatusCode).To(Equal(http.StatusNotFound))
				Expect(readBody(resp)).To(MatchJSON(`{"error":"Not found"}`))
			})
		})

		When("the database fails", func() {
			BeforeEach(func() {
				db.getErr = errors.New("database locked")
			})

			It("should return Internal Server Error", func() {
				resp, err := http.Get(ghttpServer.URL() + "/api/share/bill-1")
				Expect(err).NotTo(HaveOccurred())
				Expect(resp.StatusCode).To(Equal(http.StatusInternalServerError))
				resp.Body.Close()
			})
		})
	})

	Describe("CORS", func() {
		request := func(method, origin string) *http.Response {
			req, err := http.NewRequest(method, ghttpServer.URL()+"/", nil)
			Expect(err).NotTo(HaveOccurred())
			if origin != "" {
				req.Header.Set("Origin", origin)
			}
			resp, err := http.DefaultClient.Do(req)
			Expect(err).NotTo(HaveOccurred())
			return resp
		}

		It("should allow requests without an Origin", func() {
			resp := request(http.MethodGet, "")
			Expect(resp.StatusCode).To(Equal(http.StatusOK))
			Expect(resp.Header.Get("Access-Control-Allow-Origin")).To(BeEmpty())
			resp.Body.Close()
		})

		It("should echo an allowed origin with credentials", func() {
			resp := request(http.MethodGet, allowedOrigin)
			Expect(resp.StatusCode).To(Equal(http.StatusOK))
			Expect(resp.Header.Get("Access-Control-Allow-Origin")).To(Equal(allowedOrigin))
			Expect(resp.Header.Get("Access-Control-Allow-Credentials")).To(Equal("true"))
			resp.Body.Close()
		})

		It("should answer preflight requests", func() {
			resp := request(http.MethodOptions, allowedOrigin)
			Expect(resp.StatusCode).To(Equal(http.StatusNoContent))
			Expect(resp.Header.Get("Access-Control-Allow-Methods")).To(Equal("GET, POST, PUT, DELETE"))
			resp.Body.Close()
		})

		It("should reject other origins", func() {
			resp := request(http.MethodGet, "https://evil.example.com")
			Expect(resp.StatusCode).To(Equal(http.StatusForbidden))
			resp.Body.Close()
		})
	})
})
