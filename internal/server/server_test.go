package server

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/xuri/excelize/v2"
)

var salesHeader = []interface{}{"Product", "Quantity", "Customer", "Total_Price", "Date", "Payment_Method"}

func salesWorkbook(t *testing.T, header []interface{}, rows ...[]interface{}) []byte {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	all := append([][]interface{}{header}, rows...)
	for i, row := range all {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			t.Fatal(err)
		}
		values := row
		if err := f.SetSheetRow("Sheet1", cell, &values); err != nil {
			t.Fatalf("SetSheetRow() error = %v", err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatalf("WriteToBuffer() error = %v", err)
	}
	return buf.Bytes()
}

func defaultWorkbook(t *testing.T) []byte {
	return salesWorkbook(t, salesHeader,
		[]interface{}{"Aspirin", 2, "Ann", 10, "2024-01-01", "Cash"},
		[]interface{}{"Tablet", 1, "Bob", 15, "2024-01-02", "Card"},
		[]interface{}{"Aspirin", 1, "Bob", 5, "2024-01-01", "Card"},
	)
}

func newTestRouter(maxUpload int64) *gin.Engine {
	gin.SetMode(gin.TestMode)
	return NewRouter(RouterConfig{
		Store:          NewStore(4),
		MaxUploadBytes: maxUpload,
		AllowedOrigins: []string{"*"},
		Logger:         zerolog.Nop(),
	})
}

func uploadRequest(t *testing.T, method, target, filename string, content []byte) *http.Request {
	t.Helper()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", filename)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := part.Write(content); err != nil {
		t.Fatal(err)
	}
	if err := mw.Close(); err != nil {
		t.Fatal(err)
	}

	req := httptest.NewRequest(method, target, &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func serve(r http.Handler, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), v); err != nil {
		t.Fatalf("invalid JSON response %q: %v", rec.Body.String(), err)
	}
}

func upload(t *testing.T, r http.Handler, filename string, content []byte) string {
	t.Helper()

	rec := serve(r, uploadRequest(t, http.MethodPost, "/api/datasets", filename, content))
	if rec.Code != http.StatusCreated {
		t.Fatalf("upload status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var summary struct {
		ID string `json:"id"`
	}
	decode(t, rec, &summary)
	return summary.ID
}

func TestHealthz(t *testing.T) {
	r := newTestRouter(0)
	rec := serve(r, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rec.Code != http.StatusOK || rec.Body.String() != "ok" {
		t.Fatalf("healthz = %d %q", rec.Code, rec.Body.String())
	}
}

func TestUpload(t *testing.T) {
	r := newTestRouter(0)
	rec := serve(r, uploadRequest(t, http.MethodPost, "/api/datasets", "sales.xlsx", defaultWorkbook(t)))
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var summary struct {
		ID          string   `json:"id"`
		Records     int      `json:"records"`
		DroppedRows int      `json:"dropped_rows"`
		Columns     []string `json:"columns"`
	}
	decode(t, rec, &summary)
	if summary.ID == "" {
		t.Error("missing id")
	}
	if summary.Records != 3 || summary.DroppedRows != 0 {
		t.Errorf("records = %d, dropped = %d, want 3 and 0", summary.Records, summary.DroppedRows)
	}
	if len(summary.Columns) != len(salesHeader) {
		t.Errorf("columns = %v", summary.Columns)
	}
}

func TestUploadCSV(t *testing.T) {
	r := newTestRouter(0)
	csv := "Product,Quantity,Customer,Total_Price,Date,Payment_Method\n" +
		"Aspirin,2,Ann,10,2024-01-01,Cash\n" +
		"Tablet,1,Bob,15,not a date,Card\n"

	rec := serve(r, uploadRequest(t, http.MethodPost, "/api/datasets", "sales.csv", []byte(csv)))
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var summary struct {
		Records     int `json:"records"`
		DroppedRows int `json:"dropped_rows"`
	}
	decode(t, rec, &summary)
	if summary.Records != 1 || summary.DroppedRows != 1 {
		t.Errorf("records = %d, dropped = %d, want 1 and 1", summary.Records, summary.DroppedRows)
	}
}

func TestUploadTooLarge(t *testing.T) {
	r := newTestRouter(1 << 10)

	content := defaultWorkbook(t)
	if len(content) <= 1<<10 {
		t.Fatalf("workbook is only %d bytes, want more than the 1 KiB limit", len(content))
	}

	rec := serve(r, uploadRequest(t, http.MethodPost, "/api/datasets", "sales.xlsx", content))
	if rec.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("status = %d, want 413; body = %s", rec.Code, rec.Body.String())
	}

	var body struct {
		Error string `json:"error"`
	}
	decode(t, rec, &body)
	if !strings.Contains(body.Error, "exceeds 1024 bytes") {
		t.Errorf("error = %q", body.Error)
	}

	small := "Product,Quantity,Customer,Total_Price,Date,Payment_Method\nAspirin,2,Ann,10,2024-01-01,Cash\n"
	if rec := serve(r, uploadRequest(t, http.MethodPost, "/api/datasets", "sales.csv", []byte(small))); rec.Code != http.StatusCreated {
		t.Errorf("upload under the limit: status = %d, body = %s", rec.Code, rec.Body.String())
	}
}

func TestUploadRejected(t *testing.T) {
	tests := []struct {
		name        string
		filename    string
		content     func(t *testing.T) []byte
		wantMissing []string
	}{
		{
			name:     "not a spreadsheet",
			filename: "sales.xlsx",
			content:  func(*testing.T) []byte { return []byte("definitely not a zip archive") },
		},
		{
			name:     "unsupported extension",
			filename: "sales.pdf",
			content:  defaultWorkbook,
		},
		{
			name:     "missing columns",
			filename: "sales.xlsx",
			content: func(t *testing.T) []byte {
				return salesWorkbook(t, []interface{}{"Product", "Customer", "Total_Price", "Payment_Method"},
					[]interface{}{"Aspirin", "Ann", 10, "Cash"})
			},
			wantMissing: []string{"Quantity", "Date"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newTestRouter(0)
			rec := serve(r, uploadRequest(t, http.MethodPost, "/api/datasets", tt.filename, tt.content(t)))
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400; body = %s", rec.Code, rec.Body.String())
			}

			var body struct {
				Error   string   `json:"error"`
				Missing []string `json:"missing"`
			}
			decode(t, rec, &body)
			if body.Error == "" {
				t.Error("missing error message")
			}
			if len(body.Missing) != len(tt.wantMissing) {
				t.Fatalf("missing = %v, want %v", body.Missing, tt.wantMissing)
			}
			for i := range tt.wantMissing {
				if body.Missing[i] != tt.wantMissing[i] {
					t.Errorf("missing = %v, want %v", body.Missing, tt.wantMissing)
				}
			}
		})
	}
}

func TestUploadWithoutFile(t *testing.T) {
	r := newTestRouter(0)
	rec := serve(r, httptest.NewRequest(http.MethodPost, "/api/datasets", nil))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestViewsEndpoints(t *testing.T) {
	r := newTestRouter(0)
	id := upload(t, r, "sales.xlsx", defaultWorkbook(t))
	base := "/api/datasets/" + id

	t.Run("customers", func(t *testing.T) {
		rec := serve(r, httptest.NewRequest(http.MethodGet, base+"/customers", nil))
		var rows []struct {
			Customer   string `json:"customer"`
			TotalSpent string `json:"total_spent"`
		}
		decode(t, rec, &rows)
		if len(rows) != 2 || rows[0].Customer != "Bob" || rows[0].TotalSpent != "20" {
			t.Errorf("customers = %+v", rows)
		}
	})

	t.Run("products search", func(t *testing.T) {
		rec := serve(r, httptest.NewRequest(http.MethodGet, base+"/products?search=ab", nil))
		var rows []struct {
			Product string `json:"product"`
		}
		decode(t, rec, &rows)
		if len(rows) != 1 || rows[0].Product != "Tablet" {
			t.Errorf("products = %+v", rows)
		}
	})

	t.Run("daily totals", func(t *testing.T) {
		rec := serve(r, httptest.NewRequest(http.MethodGet, base+"/daily", nil))
		var rows []struct {
			TotalQuantity string `json:"total_quantity"`
			TotalSales    string `json:"total_sales"`
		}
		decode(t, rec, &rows)
		if len(rows) != 2 || rows[0].TotalQuantity != "3" || rows[0].TotalSales != "15" {
			t.Errorf("daily = %+v", rows)
		}
	})

	t.Run("daily products default date", func(t *testing.T) {
		rec := serve(r, httptest.NewRequest(http.MethodGet, base+"/daily/products", nil))
		var b struct {
			Products []struct {
				Product       string `json:"product"`
				TotalQuantity string `json:"total_quantity"`
			} `json:"products"`
			NoSales bool `json:"no_sales"`
		}
		decode(t, rec, &b)
		if b.NoSales || len(b.Products) != 1 || b.Products[0].Product != "Aspirin" || b.Products[0].TotalQuantity != "3" {
			t.Errorf("breakdown = %+v", b)
		}
	})

	t.Run("daily products without sales", func(t *testing.T) {
		rec := serve(r, httptest.NewRequest(http.MethodGet, base+"/daily/products?date=2024-03-01", nil))
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d", rec.Code)
		}
		var b struct {
			Products []interface{} `json:"products"`
			NoSales  bool          `json:"no_sales"`
		}
		decode(t, rec, &b)
		if !b.NoSales || len(b.Products) != 0 {
			t.Errorf("breakdown = %+v, want no_sales", b)
		}
	})

	t.Run("malformed date", func(t *testing.T) {
		rec := serve(r, httptest.NewRequest(http.MethodGet, base+"/daily/products?date=01/03/2024", nil))
		if rec.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", rec.Code)
		}
	})

	t.Run("ranking", func(t *testing.T) {
		rec := serve(r, httptest.NewRequest(http.MethodGet, base+"/ranking", nil))
		var rows []struct {
			Product string `json:"product"`
			Revenue string `json:"revenue"`
		}
		decode(t, rec, &rows)
		if len(rows) != 2 || rows[0].Product != "Aspirin" || rows[0].Revenue != "15" || rows[1].Revenue != "15" {
			t.Errorf("ranking = %+v", rows)
		}
	})

	t.Run("all views", func(t *testing.T) {
		rec := serve(r, httptest.NewRequest(http.MethodGet, base+"/views?search=asp&date=2024-01-02", nil))
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
		}
		var v struct {
			Products       []interface{} `json:"products"`
			DailyBreakdown struct {
				Products []struct {
					Product string `json:"product"`
				} `json:"products"`
			} `json:"daily_breakdown"`
			Summary struct {
				RecordCount  int    `json:"record_count"`
				TotalRevenue string `json:"total_revenue"`
			} `json:"summary"`
		}
		decode(t, rec, &v)
		if len(v.Products) != 2 {
			t.Errorf("search matched %d records, want 2", len(v.Products))
		}
		if len(v.DailyBreakdown.Products) != 1 || v.DailyBreakdown.Products[0].Product != "Tablet" {
			t.Errorf("breakdown = %+v", v.DailyBreakdown)
		}
		if v.Summary.RecordCount != 3 || v.Summary.TotalRevenue != "30" {
			t.Errorf("summary = %+v", v.Summary)
		}
	})
}

func TestUnknownDataset(t *testing.T) {
	r := newTestRouter(0)
	paths := []string{"/products", "/customers", "/daily", "/daily/products", "/ranking", "/views"}

	for _, p := range paths {
		t.Run(p, func(t *testing.T) {
			rec := serve(r, httptest.NewRequest(http.MethodGet, "/api/datasets/nope"+p, nil))
			if rec.Code != http.StatusNotFound {
				t.Errorf("status = %d, want 404", rec.Code)
			}
		})
	}
}

func TestReplaceAndDelete(t *testing.T) {
	r := newTestRouter(0)
	id := upload(t, r, "sales.xlsx", defaultWorkbook(t))

	replacement := salesWorkbook(t, salesHeader,
		[]interface{}{"Syrup", 1, "Cat", 7, "2024-02-01", "Cash"},
	)
	rec := serve(r, uploadRequest(t, http.MethodPut, "/api/datasets/"+id, "march.xlsx", replacement))
	if rec.Code != http.StatusOK {
		t.Fatalf("replace status = %d, body = %s", rec.Code, rec.Body.String())
	}

	rec = serve(r, httptest.NewRequest(http.MethodGet, "/api/datasets/"+id+"/ranking", nil))
	var rows []struct {
		Product string `json:"product"`
	}
	decode(t, rec, &rows)
	if len(rows) != 1 || rows[0].Product != "Syrup" {
		t.Errorf("ranking after replace = %+v", rows)
	}

	// A failed re-upload keeps the previous dataset.
	rec = serve(r, uploadRequest(t, http.MethodPut, "/api/datasets/"+id, "broken.xlsx", []byte("garbage")))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("broken replace status = %d, want 400", rec.Code)
	}
	rec = serve(r, httptest.NewRequest(http.MethodGet, "/api/datasets/"+id+"/ranking", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("dataset lost after failed replace: %d", rec.Code)
	}

	rec = serve(r, httptest.NewRequest(http.MethodDelete, "/api/datasets/"+id, nil))
	if rec.Code != http.StatusNoContent {
		t.Errorf("delete status = %d, want 204", rec.Code)
	}
	rec = serve(r, httptest.NewRequest(http.MethodGet, "/api/datasets/"+id+"/ranking", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("status after delete = %d, want 404", rec.Code)
	}

	rec = serve(r, uploadRequest(t, http.MethodPut, "/api/datasets/"+id, "sales.xlsx", defaultWorkbook(t)))
	if rec.Code != http.StatusNotFound {
		t.Errorf("replace of deleted dataset = %d, want 404", rec.Code)
	}
}

func TestCORS(t *testing.T) {
	r := newTestRouter(0)
	req := httptest.NewRequest(http.MethodOptions, "/api/datasets", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)

	rec := serve(r, req)
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Errorf("Access-Control-Allow-Origin = %q, want *", got)
	}
}
