package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

type client struct {
	BaseURL   string
	Token     string
	OutFormat string // "json" | "text"
	HTTP      *http.Client
	Out       io.Writer
}

// apiError is the error envelope written by the service.
type apiError struct {
	Status  int
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Detail  string            `json:"detail"`
	Fields  map[string]string `json:"fields"`
}

func (e *apiError) Error() string {
	msg := fmt.Sprintf("status=%d", e.Status)
	if e.Code != "" {
		msg += " " + e.Code
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	for k, v := range e.Fields {
		msg += fmt.Sprintf("\n  %s: %s", k, v)
	}
	return msg
}

func (c *client) do(method, path string, payload any) ([]byte, error) {
	var rd io.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		rd = bytes.NewReader(b)
	}

	url := strings.TrimRight(c.BaseURL, "/") + path
	req, err := http.NewRequest(method, url, rd)
	if err != nil {
		return nil, err
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode/100 != 2 {
		apiErr := &apiError{Status: resp.StatusCode}
		_ = json.Unmarshal(body, apiErr)
		return nil, apiErr
	}
	return body, nil
}

// print writes body indented for json output, or via text otherwise.
func (c *client) print(body []byte, text func(w io.Writer) error) error {
	if c.OutFormat == "json" || text == nil {
		var v any
		if err := json.Unmarshal(body, &v); err != nil {
			_, err = fmt.Fprintln(c.Out, string(body))
			return err
		}
		p, _ := json.MarshalIndent(v, "", "  ")
		_, err := fmt.Fprintln(c.Out, string(p))
		return err
	}
	return text(c.Out)
}
