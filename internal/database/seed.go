package database

import (
	"fmt"
	"os"

	"trackii-backend/internal/models"

	"gopkg.in/yaml.v3"
	"gorm.io/gorm"
)

// SeedData is the reference-data fixture format. Rows are matched by their
// natural key (name, part number, username, device uid, code), so seeding
// the same file twice is a no-op.
type SeedData struct {
	Locations       []SeedLocation      `yaml:"locations"`
	Routes          []SeedRoute         `yaml:"routes"`
	Areas           []SeedArea          `yaml:"areas"`
	Products        []SeedProduct       `yaml:"products"`
	Users           []SeedUser          `yaml:"users"`
	Devices         []SeedDevice        `yaml:"devices"`
	ErrorCategories []SeedErrorCategory `yaml:"error_categories"`
}

type SeedLocation struct {
	Name string `yaml:"name"`
}

type SeedRoute struct {
	Name    string   `yaml:"name"`
	Version string   `yaml:"version"`
	Steps   []string `yaml:"steps"` // location names, step 1 first
}

type SeedArea struct {
	Name     string       `yaml:"name"`
	Families []SeedFamily `yaml:"families"`
}

type SeedFamily struct {
	Name        string          `yaml:"name"`
	Subfamilies []SeedSubfamily `yaml:"subfamilies"`
}

type SeedSubfamily struct {
	Name  string `yaml:"name"`
	Route string `yaml:"route"`
}

type SeedProduct struct {
	PartNumber string `yaml:"part_number"`
	Subfamily  string `yaml:"subfamily"`
	Active     *bool  `yaml:"active"`
}

type SeedUser struct {
	Username string `yaml:"username"`
	Name     string `yaml:"name"`
	Role     string `yaml:"role"`
	Active   *bool  `yaml:"active"`
}

type SeedDevice struct {
	UID      string `yaml:"uid"`
	Name     string `yaml:"name"`
	Location string `yaml:"location"`
	User     string `yaml:"user"`
	Active   *bool  `yaml:"active"`
}

type SeedErrorCategory struct {
	Name  string          `yaml:"name"`
	Codes []SeedErrorCode `yaml:"codes"`
}

type SeedErrorCode struct {
	Code        string `yaml:"code"`
	Description string `yaml:"description"`
	Active      *bool  `yaml:"active"`
}

func LoadSeedFile(path string) (*SeedData, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seed file: %w", err)
	}
	var data SeedData
	if err := yaml.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("parse seed file %s: %w", path, err)
	}
	return &data, nil
}

func isActive(b *bool) bool {
	return b == nil || *b
}

// Seed upserts the fixture in one transaction.
func Seed(db *gorm.DB, data *SeedData) error {
	return db.Transaction(func(tx *gorm.DB) error {
		locations := map[string]uint{}
		for _, l := range data.Locations {
			var loc models.Location
			if err := tx.Where(models.Location{Name: l.Name}).
				Attrs(models.Location{Active: true}).
				FirstOrCreate(&loc).Error; err != nil {
				return fmt.Errorf("seed location %s: %w", l.Name, err)
			}
			locations[l.Name] = loc.ID
		}

		routes := map[string]uint{}
		for _, r := range data.Routes {
			id, err := seedRoute(tx, r, locations)
			if err != nil {
				return err
			}
			routes[r.Name] = id
		}

		subfamilies := map[string]uint{}
		for _, a := range data.Areas {
			var area models.Area
			if err := tx.Where(models.Area{Name: a.Name}).
				Attrs(models.Area{Active: true}).
				FirstOrCreate(&area).Error; err != nil {
				return fmt.Errorf("seed area %s: %w", a.Name, err)
			}
			for _, f := range a.Families {
				var family models.Family
				if err := tx.Where(models.Family{Name: f.Name}).
					Assign(map[string]any{"area_id": area.ID, "active": true}).
					FirstOrCreate(&family).Error; err != nil {
					return fmt.Errorf("seed family %s: %w", f.Name, err)
				}
				for _, s := range f.Subfamilies {
					var routeID *uint
					if s.Route != "" {
						id, ok := routes[s.Route]
						if !ok {
							return fmt.Errorf("seed subfamily %s: unknown route %q", s.Name, s.Route)
						}
						routeID = &id
					}
					var sub models.Subfamily
					if err := tx.Where(models.Subfamily{Name: s.Name}).
						Assign(map[string]any{"family_id": family.ID, "active_route_id": routeID, "active": true}).
						FirstOrCreate(&sub).Error; err != nil {
						return fmt.Errorf("seed subfamily %s: %w", s.Name, err)
					}
					subfamilies[s.Name] = sub.ID
				}
			}
		}

		for _, p := range data.Products {
			var subID *uint
			if p.Subfamily != "" {
				id, ok := subfamilies[p.Subfamily]
				if !ok {
					return fmt.Errorf("seed product %s: unknown subfamily %q", p.PartNumber, p.Subfamily)
				}
				subID = &id
			}
			var product models.Product
			if err := tx.Where(models.Product{PartNumber: p.PartNumber}).
				Assign(map[string]any{"subfamily_id": subID, "active": isActive(p.Active)}).
				FirstOrCreate(&product).Error; err != nil {
				return fmt.Errorf("seed product %s: %w", p.PartNumber, err)
			}
		}

		users := map[string]uint{}
		for _, u := range data.Users {
			role := models.UserRole(u.Role)
			if role == "" {
				role = models.RoleOperator
			}
			var user models.User
			if err := tx.Where(models.User{Username: u.Username}).
				Assign(map[string]any{"name": u.Name, "role": role, "active": isActive(u.Active)}).
				FirstOrCreate(&user).Error; err != nil {
				return fmt.Errorf("seed user %s: %w", u.Username, err)
			}
			users[u.Username] = user.ID
		}

		for _, d := range data.Devices {
			locID, ok := locations[d.Location]
			if !ok {
				return fmt.Errorf("seed device %s: unknown location %q", d.UID, d.Location)
			}
			var userID *uint
			if d.User != "" {
				id, ok := users[d.User]
				if !ok {
					return fmt.Errorf("seed device %s: unknown user %q", d.UID, d.User)
				}
				userID = &id
			}
			var device models.Device
			if err := tx.Where(models.Device{DeviceUID: d.UID}).
				Assign(map[string]any{"name": d.Name, "location_id": locID, "user_id": userID, "active": isActive(d.Active)}).
				FirstOrCreate(&device).Error; err != nil {
				return fmt.Errorf("seed device %s: %w", d.UID, err)
			}
		}

		for _, c := range data.ErrorCategories {
			var category models.ErrorCategory
			if err := tx.Where(models.ErrorCategory{Name: c.Name}).
				Attrs(models.ErrorCategory{Active: true}).
				FirstOrCreate(&category).Error; err != nil {
				return fmt.Errorf("seed error category %s: %w", c.Name, err)
			}
			for _, ec := range c.Codes {
				var code models.ErrorCode
				if err := tx.Where(models.ErrorCode{Code: ec.Code}).
					Assign(map[string]any{"category_id": category.ID, "description": ec.Description, "active": isActive(ec.Active)}).
					FirstOrCreate(&code).Error; err != nil {
					return fmt.Errorf("seed error code %s: %w", ec.Code, err)
				}
			}
		}

		return nil
	})
}

func seedRoute(tx *gorm.DB, r SeedRoute, locations map[string]uint) (uint, error) {
	var route models.Route
	if err := tx.Where(models.Route{Name: r.Name}).
		Assign(map[string]any{"version": r.Version, "active": true}).
		FirstOrCreate(&route).Error; err != nil {
		return 0, fmt.Errorf("seed route %s: %w", r.Name, err)
	}

	for i, locName := range r.Steps {
		locID, ok := locations[locName]
		if !ok {
			return 0, fmt.Errorf("seed route %s: unknown location %q", r.Name, locName)
		}
		var step models.RouteStep
		if err := tx.Where(models.RouteStep{RouteID: route.ID, StepNumber: i + 1}).
			Assign(map[string]any{"location_id": locID}).
			FirstOrCreate(&step).Error; err != nil {
			return 0, fmt.Errorf("seed route %s step %d: %w", r.Name, i+1, err)
		}
	}

	// Step numbers stay contiguous: drop steps the fixture no longer lists.
	if err := tx.Where("route_id = ? AND step_number > ?", route.ID, len(r.Steps)).
		Delete(&models.RouteStep{}).Error; err != nil {
		return 0, fmt.Errorf("seed route %s: trim steps: %w", r.Name, err)
	}
	return route.ID, nil
}
