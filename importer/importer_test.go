// file: importer/importer_test.go
package importer

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"catfish-cull/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/option"
)

const export = "\ufeffName, Email ,T-Shirt Size,Partner Name,Club,Junior,Women\n" +
	"Ana Silva,ana@example.com,M,Ben Okafor,Harbour,,\n" +
	"Ben Okafor,ben@example.com,L,ana silva,Harbour,no,\n" +
	",,,,,,\n" +
	"Cleo Ray,cleo@example.com,S,Dee,,yes,Y\n"

func TestReadCSV_KeysByHeader(t *testing.T) {
	rows, err := ReadCSV(strings.NewReader(export))
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, "ana@example.com", rows[0].Get("email"))
	assert.Equal(t, "M", rows[0].Get(" T-SHIRT SIZE "))
	assert.Equal(t, "", rows[2].Get("Name"))
}

func TestReadCSV_Empty(t *testing.T) {
	_, err := ReadCSV(strings.NewReader(""))
	assert.True(t, errors.Is(err, ErrNoHeader))
}

func TestRegistrants_DefaultColumns(t *testing.T) {
	rows, err := ReadCSV(strings.NewReader(export))
	require.NoError(t, err)

	regs := Registrants(rows, DefaultColumns)
	require.Len(t, regs, 4)
	assert.Equal(t, services.Registrant{
		Row: 2, Name: "Ana Silva", Email: "ana@example.com", Shirt: "M",
		PartnerName: "Ben Okafor", Club: "Harbour",
	}, regs[0])
	assert.Equal(t, 4, regs[2].Row)
	assert.True(t, regs[3].IsJunior)
	assert.True(t, regs[3].IsWomen)
	assert.False(t, regs[1].IsJunior)

	res := services.Reconcile(regs)
	assert.Equal(t, []int{4}, res.Skipped)
	require.Len(t, res.Candidates, 2)
	assert.True(t, res.Candidates[0].Matched)
}

func TestRegistrants_SplitNameColumns(t *testing.T) {
	rows, err := ReadCSV(strings.NewReader("First Name,Last Name,Buddy\nDee,Moss,Ana\n"))
	require.NoError(t, err)

	cols := DefaultColumns
	cols.Partner = "Buddy"
	regs := Registrants(rows, cols)
	require.Len(t, regs, 1)
	assert.Equal(t, "Dee Moss", regs[0].Name)
	assert.Equal(t, "Ana", regs[0].PartnerName)
}

func TestCSVSource_Load(t *testing.T) {
	path := filepath.Join(t.TempDir(), "export.csv")
	require.NoError(t, os.WriteFile(path, []byte(export), 0o600))

	regs, err := Load(context.Background(), CSVSource{Path: path}, DefaultColumns)
	require.NoError(t, err)
	assert.Len(t, regs, 4)

	_, err = CSVSource{Path: filepath.Join(t.TempDir(), "missing.csv")}.Rows(context.Background())
	assert.Error(t, err)
}

func TestSheetsSource_Rows(t *testing.T) {
	var gotPath string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"range":          "Bookings!A1:Z3",
			"majorDimension": "ROWS",
			"values": [][]any{
				{"Name", "Partner Name", "Junior"},
				{"Ana Silva", "Ben Okafor"},
				{"Ben Okafor", "Ana Silva", true},
			},
		})
	}))
	defer server.Close()

	src, err := NewSheetsSourceWithOptions(context.Background(), "sheet-123", "Bookings",
		option.WithEndpoint(server.URL+"/"),
		option.WithoutAuthentication(),
		option.WithHTTPClient(server.Client()),
	)
	require.NoError(t, err)

	regs, err := Load(context.Background(), src, DefaultColumns)
	require.NoError(t, err)
	assert.Contains(t, gotPath, "/v4/spreadsheets/sheet-123/values/")
	require.Len(t, regs, 2)
	assert.Equal(t, "Ben Okafor", regs[0].PartnerName)
	assert.False(t, regs[0].IsJunior)
	assert.True(t, regs[1].IsJunior)
}

func TestNewSheetsSource_MissingKeyFile(t *testing.T) {
	_, err := NewSheetsSource(context.Background(), filepath.Join(t.TempDir(), "nope.json"), "id", "")
	assert.Error(t, err)
}
