package pipeline

import (
	"bytes"
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/ginjaninja78/sales-dashboard/internal/aggregate"
	"github.com/ginjaninja78/sales-dashboard/internal/logger"
	"github.com/ginjaninja78/sales-dashboard/internal/types"
)

const salesCSV = `Product,Quantity,Customer,Total_Price,Date,Payment_Method
Aspirin,2,Alice,10,2024-01-01,Cash
Aspirin,1,Bob,5,2024-01-01,Card
Balm,4,Cara,99,not-a-date,Cash
Cough Syrup,1,Alice,8,2024-01-02,Card
`

func testContext() context.Context {
	return logger.WithContext(context.Background(), zerolog.Nop())
}

func csvSource(content string) Source {
	return Source{Name: "sales.csv", Reader: strings.NewReader(content)}
}

func TestRunDropsUnreadableDates(t *testing.T) {
	result, err := Run(testContext(), csvSource(salesCSV), Options{})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	stats := result.Stats
	if stats.RowsRead != 4 || stats.RowsKept != 3 || stats.RowsDropped != 1 {
		t.Errorf("Stats = %+v, want 4 read, 3 kept, 1 dropped", stats)
	}
	if got := result.Dataset.Diagnostics.DroppedRowNumbers; !reflect.DeepEqual(got, []int{4}) {
		t.Errorf("DroppedRowNumbers = %v, want [4]", got)
	}

	for _, rec := range result.Dataset.Records {
		if rec.Product == "Balm" {
			t.Fatal("row with an unreadable date reached the dataset")
		}
	}

	views, err := aggregate.ComputeViews(context.Background(), result.Dataset, aggregate.Query{})
	if err != nil {
		t.Fatalf("ComputeViews() error = %v", err)
	}
	if !views.Summary.TotalRevenue.Equal(decimal.NewFromInt(23)) {
		t.Errorf("TotalRevenue = %s, want 23", views.Summary.TotalRevenue)
	}
	if len(views.ProductRanking) != 2 {
		t.Errorf("ranking = %+v, want Aspirin and Cough Syrup only", views.ProductRanking)
	}
	if len(views.CustomerTotals) != 2 || views.CustomerTotals[0].Customer != "Alice" {
		t.Errorf("customer totals = %+v", views.CustomerTotals)
	}
}

func TestRunLogsSourceFields(t *testing.T) {
	var buf bytes.Buffer
	ctx := logger.WithContext(context.Background(), logger.NewWithConfig("debug", "json", &buf))

	if _, err := Run(ctx, csvSource(salesCSV), Options{}); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	out := buf.String()
	for _, want := range []string{
		`"format":"csv","source":"sales.csv"`,
		`"dropped_rows":1`,
		`"message":"dataset ready"`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("log output missing %s:\n%s", want, out)
		}
	}
}

func TestRunXLSX(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()

	rows := [][]interface{}{
		{"Date", "Product", "Quantity", "Total_Price", "Customer", "Payment_Method", "Notes"},
		{45292, "Aspirin", 2, 10, "Alice", "Cash", "first"},
	}
	for i, row := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		values := row
		if err := f.SetSheetRow("Sheet1", cell, &values); err != nil {
			t.Fatal(err)
		}
	}
	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatal(err)
	}

	result, err := Run(testContext(), Source{Name: "Sales.XLSX", Reader: bytes.NewReader(buf.Bytes())}, Options{})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if result.Dataset.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", result.Dataset.Len())
	}
	rec := result.Dataset.Records[0]
	if rec.Product != "Aspirin" || rec.Date.Format("2006-01-02") != "2024-01-01" {
		t.Errorf("record = %+v", rec)
	}
	if result.Dataset.SourceName != "Sales.XLSX" {
		t.Errorf("SourceName = %q", result.Dataset.SourceName)
	}
}

func TestRunFailsFast(t *testing.T) {
	tests := []struct {
		name  string
		src   Source
		check func(t *testing.T, err error)
	}{
		{
			name: "missing columns",
			src:  csvSource("Product,Quantity,Customer\nAspirin,1,Ann\n"),
			check: func(t *testing.T, err error) {
				var schemaErr *types.SchemaError
				if !errors.As(err, &schemaErr) {
					t.Fatalf("error = %v, want *types.SchemaError", err)
				}
				if !reflect.DeepEqual(schemaErr.Missing, []string{"Total_Price", "Date", "Payment_Method"}) {
					t.Errorf("Missing = %v", schemaErr.Missing)
				}
			},
		},
		{
			name: "not a workbook",
			src:  Source{Name: "sales.xlsx", Reader: strings.NewReader("plain text")},
			check: func(t *testing.T, err error) {
				var parseErr *types.ParseError
				if !errors.As(err, &parseErr) {
					t.Fatalf("error = %v, want *types.ParseError", err)
				}
			},
		},
		{
			name: "unsupported extension",
			src:  Source{Name: "sales.pdf", Reader: strings.NewReader("%PDF")},
			check: func(t *testing.T, err error) {
				if !errors.Is(err, types.ErrUnsupportedFormat) {
					t.Fatalf("error = %v, want ErrUnsupportedFormat", err)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := Run(testContext(), tt.src, Options{})
			if err == nil {
				t.Fatal("Run() succeeded, want error")
			}
			if result != nil {
				t.Error("Run() returned a result with an error")
			}
			tt.check(t, err)
		})
	}
}

func TestRunCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(testContext())
	cancel()

	if _, err := Run(ctx, csvSource(salesCSV), Options{}); !errors.Is(err, context.Canceled) {
		t.Errorf("Run() error = %v, want context.Canceled", err)
	}
}

func TestRunOptions(t *testing.T) {
	content := "Product;Quantity;Customer;Total_Price;Date;Payment_Method\n" +
		"Aspirin;2;Ann;10;01/02/2024;Cash\n"

	result, err := Run(testContext(), csvSource(content), Options{
		CSVDelimiter: ";",
		DateLayouts:  []string{"02/01/2006"},
	})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if got := result.Dataset.Records[0].Date.Format("2006-01-02"); got != "2024-02-01" {
		t.Errorf("Date = %s, want 2024-02-01", got)
	}
}

func TestFormatFromName(t *testing.T) {
	tests := []struct {
		name    string
		want    Format
		wantErr bool
	}{
		{"sales.xlsx", FormatXLSX, false},
		{"SALES.XLSM", FormatXLSX, false},
		{"report.csv", FormatCSV, false},
		{"old.xls", "", true},
		{"noext", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := FormatFromName(tt.name)
			if (err != nil) != tt.wantErr {
				t.Fatalf("FormatFromName(%q) error = %v, wantErr %v", tt.name, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("FormatFromName(%q) = %q, want %q", tt.name, got, tt.want)
			}
			if err != nil && !errors.Is(err, types.ErrUnsupportedFormat) {
				t.Errorf("error = %v, want ErrUnsupportedFormat", err)
			}
		})
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"xlsx", FormatXLSX, false},
		{" CSV ", FormatCSV, false},
		{"json", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseFormat(tt.in)
			if (err != nil) != tt.wantErr || got != tt.want {
				t.Errorf("ParseFormat(%q) = %q, %v", tt.in, got, err)
			}
		})
	}
}

func TestCheck(t *testing.T) {
	if err := Check(csvSource(salesCSV), Options{}); err != nil {
		t.Errorf("Check() error = %v", err)
	}

	err := Check(csvSource("Product\nAspirin\n"), Options{})
	var schemaErr *types.SchemaError
	if !errors.As(err, &schemaErr) || len(schemaErr.Missing) != 5 {
		t.Errorf("Check() error = %v, want five missing columns", err)
	}
}
