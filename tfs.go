package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// WorkItemSource is the backend boundary: anything that can produce the
// date-bounded work item set for one run.
type WorkItemSource interface {
	Fetch(ctx context.Context, since time.Time) ([]WorkItem, error)
}

// TFSSource fetches work items from a TFS / Azure DevOps project: a WIQL
// query for the ids, then a detail request for the fields.
type TFSSource struct {
	cfg Config
}

func NewTFSSource(cfg Config) *TFSSource {
	return &TFSSource{cfg: cfg}
}

type wiqlResponse struct {
	WorkItems []struct {
		ID int `json:"id"`
	} `json:"workItems"`
}

type workItemDetailsResponse struct {
	Value []tfsWorkItem `json:"value"`
}

type tfsWorkItem struct {
	ID     int           `json:"id"`
	Fields tfsItemFields `json:"fields"`
}

type tfsItemFields struct {
	Title       string          `json:"System.Title"`
	Description string          `json:"System.Description"`
	WorkType    string          `json:"System.WorkItemType"`
	State       string          `json:"System.State"`
	AssignedTo  json.RawMessage `json:"System.AssignedTo"`
	Priority    json.RawMessage `json:"System.Priority"`
	Severity    string          `json:"Microsoft.VSTS.Common.Severity"`
	Tags        string          `json:"System.Tags"`
	CreatedDate string          `json:"System.CreatedDate"`
	ChangedDate string          `json:"System.ChangedDate"`
}

func (s *TFSSource) Fetch(ctx context.Context, since time.Time) ([]WorkItem, error) {
	ids, err := s.queryWorkItemIDs(ctx, since)
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return nil, nil
	}
	log.Printf("tfs fetch ids=%d since=%s", len(ids), since.Format("2006-01-02"))
	return s.fetchWorkItemDetails(ctx, ids)
}

func (s *TFSSource) queryWorkItemIDs(ctx context.Context, since time.Time) ([]int, error) {
	// Items assigned to the user or @mentioning them, changed in the window.
	wiql := fmt.Sprintf(`
SELECT [System.Id], [System.Title], [System.State], [System.WorkItemType],
       [System.AssignedTo], [System.Priority], [Microsoft.VSTS.Common.Severity],
       [System.Description], [System.Tags], [System.CreatedDate], [System.ChangedDate]
FROM workitems
WHERE [System.TeamProject] = '%s'
AND ([System.AssignedTo] = '%s'
     OR [System.History] CONTAINS '@%s')
AND [System.ChangedDate] >= '%s'
ORDER BY [System.Priority] ASC, [System.ChangedDate] DESC`,
		s.cfg.ProjectName, s.cfg.UserDisplayName, s.cfg.UserDisplayName, since.Format(time.RFC3339))

	body, err := json.Marshal(map[string]string{"query": wiql})
	if err != nil {
		return nil, fmt.Errorf("marshaling wiql request: %w", err)
	}

	url := fmt.Sprintf("%s/%s/_apis/wit/wiql?api-version=6.0", s.cfg.TFSURL, s.cfg.ProjectName)
	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("creating wiql request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.SetBasicAuth("", s.cfg.PersonalAccessToken)

	resp, err := externalHTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("executing wiql query: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("wiql query failed: status %d: %s", resp.StatusCode, truncateBody(respBody))
	}

	var wiqlResp wiqlResponse
	if err := json.NewDecoder(resp.Body).Decode(&wiqlResp); err != nil {
		return nil, fmt.Errorf("parsing wiql response: %w", err)
	}

	ids := make([]int, 0, len(wiqlResp.WorkItems))
	for _, item := range wiqlResp.WorkItems {
		ids = append(ids, item.ID)
	}
	return ids, nil
}

func (s *TFSSource) fetchWorkItemDetails(ctx context.Context, ids []int) ([]WorkItem, error) {
	idStrs := make([]string, len(ids))
	for i, id := range ids {
		idStrs[i] = strconv.Itoa(id)
	}
	url := fmt.Sprintf("%s/%s/_apis/wit/workitems?ids=%s&$expand=all&api-version=6.0",
		s.cfg.TFSURL, s.cfg.ProjectName, strings.Join(idStrs, ","))

	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating details request: %w", err)
	}
	req.SetBasicAuth("", s.cfg.PersonalAccessToken)

	resp, err := externalHTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching work item details: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("work item details failed: status %d: %s", resp.StatusCode, truncateBody(respBody))
	}

	var details workItemDetailsResponse
	if err := json.NewDecoder(resp.Body).Decode(&details); err != nil {
		return nil, fmt.Errorf("parsing work item details: %w", err)
	}

	items := make([]WorkItem, 0, len(details.Value))
	for _, raw := range details.Value {
		items = append(items, convertTFSItem(raw))
	}
	return items, nil
}

func convertTFSItem(raw tfsWorkItem) WorkItem {
	return WorkItem{
		ID:          raw.ID,
		Title:       raw.Fields.Title,
		Description: raw.Fields.Description,
		Type:        raw.Fields.WorkType,
		State:       raw.Fields.State,
		Priority:    parsePriorityField(raw.Fields.Priority),
		Severity:    raw.Fields.Severity,
		AssignedTo:  parseAssignedTo(raw.Fields.AssignedTo),
		Tags:        splitTags(raw.Fields.Tags),
		CreatedDate: parseTFSTime(raw.Fields.CreatedDate),
		ChangedDate: parseTFSTime(raw.Fields.ChangedDate),
	}
}

// parseAssignedTo handles both API shapes: older servers return the display
// name as a string, newer ones an identity object.
func parseAssignedTo(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var asString string
	if err := json.Unmarshal(raw, &asString); err == nil {
		return asString
	}
	var identity struct {
		DisplayName string `json:"displayName"`
	}
	if err := json.Unmarshal(raw, &identity); err == nil {
		return identity.DisplayName
	}
	return ""
}

func parsePriorityField(raw json.RawMessage) int {
	if len(raw) == 0 {
		return 0
	}
	var n float64
	if err := json.Unmarshal(raw, &n); err == nil {
		return int(n)
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		if n, err := strconv.Atoi(strings.TrimSpace(s)); err == nil {
			return n
		}
	}
	return 0
}

func splitTags(tags string) []string {
	if strings.TrimSpace(tags) == "" {
		return nil
	}
	parts := strings.Split(tags, ";")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func parseTFSTime(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

func truncateBody(body []byte) string {
	s := strings.TrimSpace(string(body))
	if len(s) > 300 {
		s = s[:300] + "..."
	}
	return s
}

// TestTFSAuth verifies the configured credentials against the work items
// endpoint without running a query.
func TestTFSAuth(cfg Config) error {
	url := fmt.Sprintf("%s/%s/_apis/wit/workitems?api-version=6.0", cfg.TFSURL, cfg.ProjectName)
	req, err := http.NewRequest("GET", url, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.SetBasicAuth("", cfg.PersonalAccessToken)

	resp, err := externalHTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("connecting to %s: %w", cfg.TFSURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return fmt.Errorf("authentication failed: status %d", resp.StatusCode)
	}
	return nil
}
