package cmd

import (
	"fmt"
	"log"

	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"
	gormPostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the database with sample data",
	Long:  `Seed the database with an admin account, baseline roles and permissions, and a starter department tree.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig(".")
		if err != nil {
			log.Fatalf("failed to load config: %v", err)
		}

		sqlDB, err := initDB(cfg.Database)
		if err != nil {
			log.Fatalf("failed to init db: %v", err)
		}

		db, err := gorm.Open(gormPostgres.New(gormPostgres.Config{Conn: sqlDB.DB}), &gorm.Config{})
		if err != nil {
			log.Fatalf("failed to init gorm: %v", err)
		}

		if clearData {
			for _, table := range []string{"user_departments", "departments", "role_permissions", "user_roles", "permissions", "roles", "users"} {
				if err := db.Exec("DELETE FROM " + table).Error; err != nil {
					log.Fatalf("failed to clear %s: %v", table, err)
				}
			}
			fmt.Println("Cleared existing data")
		}

		password := "admin12345"
		hash, _ := bcrypt.GenerateFromPassword([]byte(password), cfg.Security.BCryptCost)

		adminUsername := "admin"
		var exists int
		adminExists := false
		if err := db.Raw("SELECT 1 FROM users WHERE username = ?", adminUsername).Row().Scan(&exists); err == nil {
			fmt.Println("admin user already exists; will ensure roles and permissions")
			adminExists = true
		}

		if !adminExists {
			if err := db.Exec("INSERT INTO users (username, email, password_hash, is_active, created_at, updated_at) VALUES (?, ?, ?, true, now(), now())",
				adminUsername, "admin@example.com", string(hash)).Error; err != nil {
				log.Fatalf("failed to insert admin user: %v", err)
			}
			fmt.Println("Seeded admin user:", adminUsername)
		}

		roles := []struct {
			Name string
			Desc string
		}{
			{"admin", "full administrator"},
			{"member", "regular member"},
		}
		for _, r := range roles {
			var rid int64
			if err := db.Raw("SELECT id FROM roles WHERE name = ?", r.Name).Row().Scan(&rid); err != nil {
				if err := db.Exec("INSERT INTO roles (name, description, is_active, created_at, updated_at) VALUES (?, ?, true, now(), now())", r.Name, r.Desc).Error; err != nil {
					log.Fatalf("failed to insert role %s: %v", r.Name, err)
				}
			}
		}

		resources := []string{"user", "role", "permission", "department"}
		actions := []string{"create", "read", "update", "delete"}
		for _, resource := range resources {
			for _, action := range actions {
				var pid int64
				if err := db.Raw("SELECT id FROM permissions WHERE resource = ? AND action = ?", resource, action).Row().Scan(&pid); err != nil {
					name := fmt.Sprintf("%s %s", action, resource)
					if err := db.Exec("INSERT INTO permissions (name, resource, action, is_active, created_at, updated_at) VALUES (?, ?, ?, true, now(), now())",
						name, resource, action).Error; err != nil {
						log.Fatalf("failed to insert permission %s:%s: %v", resource, action, err)
					}
				}
			}
		}

		var adminRoleID int64
		if err := db.Raw("SELECT id FROM roles WHERE name = ?", "admin").Row().Scan(&adminRoleID); err != nil {
			log.Fatalf("failed to lookup admin role id: %v", err)
		}

		// grant every permission to the admin role
		rows, err := db.Raw("SELECT id FROM permissions").Rows()
		if err != nil {
			log.Fatalf("failed to list permissions: %v", err)
		}
		var permIDs []int64
		for rows.Next() {
			var pid int64
			if err := rows.Scan(&pid); err != nil {
				log.Fatalf("failed to scan permission id: %v", err)
			}
			permIDs = append(permIDs, pid)
		}
		rows.Close()

		for _, pid := range permIDs {
			var exists int
			if err := db.Raw("SELECT 1 FROM role_permissions WHERE role_id = ? AND permission_id = ?", adminRoleID, pid).Row().Scan(&exists); err == nil {
				continue
			}
			if err := db.Exec("INSERT INTO role_permissions (role_id, permission_id, created_at) VALUES (?, ?, now())", adminRoleID, pid).Error; err != nil {
				log.Fatalf("failed to grant permission %d to admin role: %v", pid, err)
			}
		}
		fmt.Println("Granted all permissions to admin role")

		var adminUserID int64
		if err := db.Raw("SELECT id FROM users WHERE username = ?", adminUsername).Row().Scan(&adminUserID); err != nil {
			log.Fatalf("failed to lookup admin user id: %v", err)
		}
		if err := db.Raw("SELECT 1 FROM user_roles WHERE user_id = ? AND role_id = ?", adminUserID, adminRoleID).Row().Scan(&exists); err != nil {
			if err := db.Exec("INSERT INTO user_roles (user_id, role_id, created_at) VALUES (?, ?, now())", adminUserID, adminRoleID).Error; err != nil {
				log.Fatalf("failed to assign admin role: %v", err)
			}
		}
		fmt.Println("Assigned admin role to admin user")

		var hqID int64
		if err := db.Raw("SELECT id FROM departments WHERE code = ?", "HQ").Row().Scan(&hqID); err != nil {
			if err := db.Exec("INSERT INTO departments (name, code, level, sort_order, is_active, created_at, updated_at) VALUES (?, ?, 1, 0, true, now(), now())",
				"Headquarters", "HQ").Error; err != nil {
				log.Fatalf("failed to insert HQ department: %v", err)
			}
			if err := db.Raw("SELECT id FROM departments WHERE code = ?", "HQ").Row().Scan(&hqID); err != nil {
				log.Fatalf("failed to lookup HQ department: %v", err)
			}
			fmt.Println("Seeded department: HQ")
		}

		children := []struct {
			Name string
			Code string
			Sort int
		}{
			{"Engineering", "ENG", 1},
			{"People Operations", "PEOPLE", 2},
			{"Finance", "FIN", 3},
		}
		for _, c := range children {
			var cid int64
			if err := db.Raw("SELECT id FROM departments WHERE code = ?", c.Code).Row().Scan(&cid); err != nil {
				if err := db.Exec("INSERT INTO departments (name, code, parent_id, level, sort_order, is_active, created_at, updated_at) VALUES (?, ?, ?, 2, ?, true, now(), now())",
					c.Name, c.Code, hqID, c.Sort).Error; err != nil {
					log.Fatalf("failed to insert department %s: %v", c.Code, err)
				}
				fmt.Printf("Seeded department: %s\n", c.Code)
			}
		}

		if err := db.Raw("SELECT 1 FROM user_departments WHERE user_id = ? AND department_id = ?", adminUserID, hqID).Row().Scan(&exists); err != nil {
			if err := db.Exec("INSERT INTO user_departments (user_id, department_id, position, is_primary, created_at, updated_at) VALUES (?, ?, ?, true, now(), now())",
				adminUserID, hqID, "Administrator").Error; err != nil {
				log.Fatalf("failed to insert admin membership: %v", err)
			}
			fmt.Println("Placed admin user in HQ as primary department")
		}

		fmt.Println("Seeding complete")
	},
}
