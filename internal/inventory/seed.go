package inventory

import (
	"context"
	_ "embed"
	"fmt"
	"log"

	"gopkg.in/yaml.v3"

	"github.com/assetdesk/assetdesk/internal/model"
)

//go:embed seed.yml
var seedYAML []byte

type seedData struct {
	Categories  []map[string]any `yaml:"categories"`
	Locations   []map[string]any `yaml:"locations"`
	Departments []map[string]any `yaml:"departments"`
	Vendors     []map[string]any `yaml:"vendors"`
	Assets      []seedAsset      `yaml:"assets"`
}

type seedAsset struct {
	Fields      map[string]any   `yaml:",inline"`
	Category    string           `yaml:"category"`
	Location    string           `yaml:"location"`
	Department  string           `yaml:"department"`
	Vendor      string           `yaml:"vendor"`
	AssignedTo  *seedAssignee    `yaml:"assigned_to"`
	Schedules   []seedSchedule   `yaml:"schedules"`
	Maintenance []map[string]any `yaml:"maintenance"`
}

type seedAssignee struct {
	ID   string `yaml:"id"`
	Name string `yaml:"name"`
}

type seedSchedule struct {
	Description   string `yaml:"description"`
	FrequencyDays int    `yaml:"frequency_days"`
	DueInDays     int    `yaml:"due_in_days"`
}

// Seed loads the embedded demo dataset into an empty store. It reports
// whether anything was loaded.
func (s *Store) Seed(ctx context.Context) (bool, error) {
	existing, err := s.Assets().List(ctx, model.ListParams{Page: 1, PageSize: 1})
	if err != nil {
		return false, err
	}
	if existing.Total > 0 {
		return false, nil
	}

	var data seedData
	if err := yaml.Unmarshal(seedYAML, &data); err != nil {
		return false, fmt.Errorf("inventory: parse seed: %w", err)
	}

	categories, err := seedNamed(ctx, s.Categories(), data.Categories, func(c model.Category) (string, int64) { return c.Name, c.ID })
	if err != nil {
		return false, err
	}
	locations, err := seedNamed(ctx, s.Locations(), data.Locations, func(l model.Location) (string, int64) { return l.Name, l.ID })
	if err != nil {
		return false, err
	}
	departments, err := seedNamed(ctx, s.Departments(), data.Departments, func(d model.Department) (string, int64) { return d.Name, d.ID })
	if err != nil {
		return false, err
	}
	vendors, err := seedNamed(ctx, s.Vendors(), data.Vendors, func(v model.Vendor) (string, int64) { return v.Name, v.ID })
	if err != nil {
		return false, err
	}

	today := s.today()
	for _, a := range data.Assets {
		payload := a.Fields
		if payload == nil {
			payload = map[string]any{}
		}
		for key, ids := range map[string]struct {
			name string
			ids  map[string]int64
		}{
			"category_id":   {a.Category, categories},
			"location_id":   {a.Location, locations},
			"department_id": {a.Department, departments},
			"vendor_id":     {a.Vendor, vendors},
		} {
			if ids.name == "" {
				continue
			}
			id, ok := ids.ids[ids.name]
			if !ok {
				return false, fmt.Errorf("inventory: seed asset %v: unknown %s %q", payload["asset_tag"], key, ids.name)
			}
			payload[key] = id
		}

		asset, err := s.Assets().Create(ctx, payload)
		if err != nil {
			return false, fmt.Errorf("inventory: seed asset %v: %w", payload["asset_tag"], err)
		}
		for _, sc := range a.Schedules {
			_, err := s.CreateSchedule(ctx, asset.ID, map[string]any{
				"description":    sc.Description,
				"frequency_days": sc.FrequencyDays,
				"next_due":       today.AddDate(0, 0, sc.DueInDays).Format(dateLayout),
			})
			if err != nil {
				return false, fmt.Errorf("inventory: seed schedule for %s: %w", asset.AssetTag, err)
			}
		}
		for _, m := range a.Maintenance {
			if _, err := s.CreateMaintenanceRecord(ctx, asset.ID, m); err != nil {
				return false, fmt.Errorf("inventory: seed maintenance for %s: %w", asset.AssetTag, err)
			}
		}
		if a.AssignedTo != nil {
			if _, err := s.AssignAsset(ctx, asset.ID, model.Assignment{
				AssigneeID:   a.AssignedTo.ID,
				AssigneeName: a.AssignedTo.Name,
			}); err != nil {
				return false, fmt.Errorf("inventory: seed assignment for %s: %w", asset.AssetTag, err)
			}
		}
	}

	log.Printf("inventory: seeded %d assets", len(data.Assets))
	return true, nil
}

func seedNamed[T any](ctx context.Context, c model.Collection[T], rows []map[string]any, key func(T) (string, int64)) (map[string]int64, error) {
	ids := make(map[string]int64, len(rows))
	for _, row := range rows {
		created, err := c.Create(ctx, row)
		if err != nil {
			return nil, fmt.Errorf("inventory: seed %v: %w", row["name"], err)
		}
		name, id := key(created)
		ids[name] = id
	}
	return ids, nil
}
