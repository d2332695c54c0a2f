package seed

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/bwmarrin/snowflake"
	"github.com/fairpricelabs/fairprice/internal/cache"
	countrydomain "github.com/fairpricelabs/fairprice/internal/country/domain"
	"gorm.io/gorm"
)

//go:embed ppp_groups.json
var pppGroupsJSON []byte

type groupData struct {
	Name                string  `json:"name"`
	RecommendedDiscount float64 `json:"recommended_discount"`
	Countries           []struct {
		Name string `json:"name"`
		Code string `json:"code"`
	} `json:"countries"`
}

// EnsureCountryReferenceData loads the purchasing-power dataset into the
// country reference tables. Safe to run on every deploy: rows upsert on
// their natural keys.
func EnsureCountryReferenceData(db *gorm.DB, repo countrydomain.Repository, c *cache.Cache) error {
	if db == nil {
		return errors.New("seed database handle is required")
	}

	var groups []groupData
	if err := json.Unmarshal(pppGroupsJSON, &groups); err != nil {
		return fmt.Errorf("parse ppp dataset: %w", err)
	}

	node, err := snowflake.NewNode(1)
	if err != nil {
		return err
	}

	ctx := context.Background()
	err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, g := range groups {
			if err := repo.UpsertGroup(ctx, tx, &countrydomain.CountryGroup{
				ID:                  node.Generate(),
				Name:                g.Name,
				RecommendedDiscount: g.RecommendedDiscount,
			}); err != nil {
				return fmt.Errorf("upsert group %s: %w", g.Name, err)
			}
		}

		// Upserted groups keep their original IDs, so membership resolves
		// against the table, not the generated IDs above.
		stored, err := repo.ListGroups(ctx, tx)
		if err != nil {
			return err
		}
		idByName := make(map[string]snowflake.ID, len(stored))
		for _, g := range stored {
			idByName[g.Name] = g.ID
		}

		for _, g := range groups {
			groupID, ok := idByName[g.Name]
			if !ok {
				return fmt.Errorf("group %s missing after upsert", g.Name)
			}
			for _, country := range g.Countries {
				if err := repo.UpsertCountry(ctx, tx, &countrydomain.Country{
					ID:      node.Generate(),
					Name:    country.Name,
					Code:    country.Code,
					GroupID: groupID,
				}); err != nil {
					return fmt.Errorf("upsert country %s: %w", country.Code, err)
				}
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	if c != nil {
		c.Invalidate(ctx,
			cache.GlobalTag(cache.KindCountries),
			cache.GlobalTag(cache.KindCountryGroups))
	}
	return nil
}
