package lise

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/net/html/charset"
)

// partialResponse is the JSF partial-update document returned to ajax requests.
//
//	<partial-response>
//	  <changes>
//	    <update id="form:j_idt118"><![CDATA[...]]></update>
//	    <update id="j_id1:javax.faces.ViewState:0"><![CDATA[...]]></update>
//	  </changes>
//	</partial-response>
type partialResponse struct {
	XMLName xml.Name `xml:"partial-response"`
	Changes struct {
		Updates []partialUpdate `xml:"update"`
	} `xml:"changes"`
	Redirect *struct {
		Url string `xml:"url,attr"`
	} `xml:"redirect"`
	Error *struct {
		Name    string `xml:"error-name"`
		Message string `xml:"error-message"`
	} `xml:"error"`
}

type partialUpdate struct {
	Id   string `xml:"id,attr"`
	Body string `xml:",chardata"`
}

func decodePartialResponse(body []byte) (partialResponse, error) {
	decoder := xml.NewDecoder(bytes.NewReader(body))
	decoder.CharsetReader = charset.NewReaderLabel

	var res partialResponse
	err := decoder.Decode(&res)
	if err != nil {
		return partialResponse{}, fmt.Errorf("decode partial response: %w", err)
	}
	if res.Redirect != nil {
		// the portal answers an ajax request with a redirect when the view expired
		return partialResponse{}, errors.New("portal redirected the partial request, the view has expired")
	}
	if res.Error != nil {
		return partialResponse{}, fmt.Errorf("portal returned a partial error: %s", res.Error.Name)
	}
	return res, nil
}

// fragment returns the body of the update with the given component id.
func (r partialResponse) fragment(id string) (string, bool) {
	for _, u := range r.Changes.Updates {
		if u.Id == id {
			return u.Body, true
		}
	}
	return "", false
}

// viewState returns the rotated view token if the response carries one.
func (r partialResponse) viewState() (string, bool) {
	for _, u := range r.Changes.Updates {
		if strings.Contains(u.Id, fieldViewState) {
			token := strings.TrimSpace(u.Body)
			if token == "" {
				continue
			}
			return token, true
		}
	}
	return "", false
}
