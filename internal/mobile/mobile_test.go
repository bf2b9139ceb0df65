package mobile

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harrylevesque/qrforge/internal/models"
	"github.com/harrylevesque/qrforge/internal/payload"
	"github.com/harrylevesque/qrforge/internal/qr"
)

func TestParseScannedInvertsFormatter(t *testing.T) {
	records := []models.Record{
		models.TextRecord{Text: "hello world"},
		models.URLRecord{URL: "https://example.com/a?b=c"},
		models.ContactRecord{FirstName: "John", LastName: "Doe", Address: "123 Main St", Email: "john@example.com", Phone: "5551234"},
		models.WifiRecord{SSID: "HomeNet", Password: "s3cret", Encryption: models.EncryptionWPA, Hidden: true},
		models.WifiRecord{SSID: "Cafe", Encryption: models.EncryptionNone},
		models.SmsRecord{PhoneNumber: "5551234", Message: "Hi"},
		models.EmailRecord{To: "a@b.c", Subject: "Hello", Body: "See you"},
		models.PhoneCallRecord{PhoneNumber: "+15551234"},
	}
	for _, rec := range records {
		t.Run(string(rec.Kind()), func(t *testing.T) {
			text, err := payload.Format(rec)
			require.NoError(t, err)

			got, err := ParseScanned(text)
			require.NoError(t, err)
			assert.Equal(t, rec, got)
		})
	}
}

func TestParseScannedEvent(t *testing.T) {
	rec := models.EventRecord{
		Title:       "Launch",
		Description: "Demo day",
		Start:       time.Date(2024, 3, 1, 9, 0, 0, 0, time.Local),
		End:         time.Date(2024, 3, 1, 17, 30, 0, 0, time.Local),
		URL:         "https://example.com/launch",
	}
	text, err := payload.FormatEvent(rec)
	require.NoError(t, err)

	got, err := ParseScanned(text)
	require.NoError(t, err)
	ev, ok := got.(models.EventRecord)
	require.True(t, ok)
	assert.Equal(t, rec.Title, ev.Title)
	assert.Equal(t, rec.Description, ev.Description)
	assert.Equal(t, rec.URL, ev.URL)
	assert.True(t, rec.Start.Equal(ev.Start), "start %s", ev.Start)
	assert.True(t, rec.End.Equal(ev.End), "end %s", ev.End)
}

func TestParseScannedEscapedValues(t *testing.T) {
	f := payload.Formatter{EscapeValues: true}

	wifi, err := f.Wifi(models.WifiRecord{SSID: "My;Net", Password: `p:ss\word`, Encryption: models.EncryptionWEP})
	require.NoError(t, err)
	got, err := ParseScanned(wifi)
	require.NoError(t, err)
	assert.Equal(t, models.WifiRecord{SSID: "My;Net", Password: `p:ss\word`, Encryption: models.EncryptionWEP}, got)

	ev, err := f.Event(models.EventRecord{
		Title:       "Lunch, then talk",
		Description: "line one\nline two; done",
		Start:       time.Date(2024, 1, 2, 12, 0, 0, 0, time.Local),
		End:         time.Date(2024, 1, 2, 13, 0, 0, 0, time.Local),
	})
	require.NoError(t, err)
	got, err = ParseScanned(ev)
	require.NoError(t, err)
	assert.Equal(t, "Lunch, then talk", got.(models.EventRecord).Title)
	assert.Equal(t, "line one\nline two; done", got.(models.EventRecord).Description)
}

func TestParseScannedDetection(t *testing.T) {
	cases := map[string]models.Kind{
		"just words":               models.KindText,
		"HTTP://EXAMPLE.COM":       models.KindURL,
		"tel:911":                  models.KindPhone,
		"smsto:1:x":                models.KindSms,
		"WIFI:S:net;;":             models.KindWifi,
		"MATMSG:TO:a@b.c;;":        models.KindEmail,
		"BEGIN:VEVENT\nEND:VEVENT": models.KindEvent,
		"ftp://example.com":        models.KindText,
	}
	for text, want := range cases {
		rec, err := ParseScanned(text)
		require.NoError(t, err, text)
		assert.Equal(t, want, rec.Kind(), text)
	}
}

func TestParseScannedErrors(t *testing.T) {
	_, err := ParseScanned("  \n")
	assert.ErrorIs(t, err, ErrEmptyScan)

	_, err = ParseScanned("WIFI:T:KERBEROS;S:x;;")
	assert.ErrorIs(t, err, ErrMalformed)

	_, err = ParseScanned("MATMSG:SUB:no recipient;;")
	assert.ErrorIs(t, err, ErrMalformed)

	_, err = ParseScanned("BEGIN:VEVENT\nDTSTART:tomorrow\nEND:VEVENT\n")
	assert.ErrorIs(t, err, ErrMalformed)
}

func TestScan(t *testing.T) {
	text, err := payload.FormatSms(models.SmsRecord{PhoneNumber: "5551234", Message: "Hi"})
	require.NoError(t, err)
	png, err := qr.NewEncoder(qr.Options{}).Encode(text, nil, nil)
	require.NoError(t, err)

	res, err := Scan(png)
	require.NoError(t, err)
	assert.Equal(t, "SMSTO:5551234:Hi", res.Text)
	assert.Equal(t, models.KindSms, res.Kind)
	assert.Equal(t, models.SmsRecord{PhoneNumber: "5551234", Message: "Hi"}, res.Record)

	_, err = Scan([]byte("not an image"))
	assert.ErrorIs(t, err, qr.ErrQRDecode)
}

func TestFieldsCoverEveryKind(t *testing.T) {
	for _, k := range models.Kinds {
		fields := Fields(k)
		require.NotEmpty(t, fields, k)
		assert.True(t, fields[0].Required, "first %s field should be required", k)
	}
	assert.Nil(t, Fields("nope"))
}

func TestRenderForm(t *testing.T) {
	pages, err := NewPages()
	require.NoError(t, err)

	page := NewPage(models.KindWifi, "#000000", "#ffffff")
	page.Values["ssid"] = "Home<Net>"
	page.Values["encryption"] = "WEP"
	page.Values["hidden"] = "on"
	page.Prompt = payload.IncompletePrompt

	var buf bytes.Buffer
	require.NoError(t, pages.Render(&buf, page))
	html := buf.String()

	assert.Contains(t, html, `name="ssid" value="Home&lt;Net&gt;"`)
	assert.Contains(t, html, `<option selected>WEP</option>`)
	assert.Contains(t, html, `id="hidden" name="hidden" checked`)
	assert.Contains(t, html, `<a href="/?kind=wifi" class="active">Wi-Fi</a>`)
	assert.Contains(t, html, payload.IncompletePrompt)
	assert.NotContains(t, html, "<img")
}

func TestRenderResult(t *testing.T) {
	pages, err := NewPages()
	require.NoError(t, err)

	page := NewPage(models.KindText, "#000000", "#ffffff")
	page.Image = "data:image/png;base64,iVBORw0KGgo="
	page.Download = "/download/abc"

	var buf bytes.Buffer
	require.NoError(t, pages.Render(&buf, page))
	assert.Contains(t, buf.String(), `src="data:image/png;base64,iVBORw0KGgo="`)
	assert.Contains(t, buf.String(), `href="/download/abc" download="text_qr_code.png"`)
}

func TestParseEventTime(t *testing.T) {
	want := time.Date(2024, 12, 31, 23, 30, 0, 0, time.Local)
	for _, in := range []string{"2024-12-31T23:30", "2024-12-31 23:30", "20241231 2330", "20241231T2330", "20241231T233000"} {
		got, err := ParseEventTime("start", in)
		require.NoError(t, err, in)
		assert.True(t, want.Equal(got), "%s parsed as %s", in, got)
	}

	got, err := ParseEventTime("start", "")
	require.NoError(t, err)
	assert.True(t, got.IsZero())

	_, err = ParseEventTime("end", "yesterday")
	assert.ErrorIs(t, err, ErrInvalidField)
	assert.EqualError(t, err, `invalid end date "yesterday", expected YYYY-MM-DDTHH:MM or YYYYMMDD HHMM`)
}

func TestRecordFromForm(t *testing.T) {
	form := map[string]string{
		"ssid":       "Home",
		"password":   "pw",
		"encryption": "WPA/WPA2",
		"hidden":     "on",
	}
	rec, err := RecordFromForm(models.KindWifi, func(name string) string { return form[name] })
	require.NoError(t, err)
	assert.Equal(t, models.WifiRecord{SSID: "Home", Password: "pw", Encryption: models.EncryptionWPA, Hidden: true}, rec)

	form["encryption"] = "ROT13"
	_, err = RecordFromForm(models.KindWifi, func(name string) string { return form[name] })
	assert.ErrorIs(t, err, ErrInvalidField)

	_, err = RecordFromForm("fax", func(string) string { return "" })
	assert.ErrorIs(t, err, models.ErrUnknownKind)

	// Every kind with nothing filled in parses, and formatting then reports
	// the blank field.
	for _, k := range models.Kinds {
		rec, err := RecordFromForm(k, func(string) string { return "" })
		require.NoError(t, err, k)
		_, err = payload.Format(rec)
		assert.ErrorIs(t, err, payload.ErrIncomplete, k)
	}
}
