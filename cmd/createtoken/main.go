package main

import (
	"flag"
	"fmt"
	"log"
	"time"

	"ojttracker.com/ojttracker/config"
	"ojttracker.com/ojttracker/security"
)

func main() {
	role := flag.String("role", string(security.RoleStudent), "student|department|admin|superadmin")
	userID := flag.String("user", "dev-user", "user id (nameid claim)")
	email := flag.String("email", "", "email claim")
	studentID := flag.String("student", "", "student id for student tokens")
	department := flag.String("department", "", "department, required for department tokens")
	ttl := flag.Duration("ttl", time.Hour, "token lifetime")
	flag.Parse()

	cfg := config.MustLoad(".env")
	secret, err := security.DecodeSecret(cfg.JWTSecret)
	if err != nil {
		log.Fatal(err)
	}

	token, err := security.CreateIdentityToken(security.Identity{
		UserID:     *userID,
		Email:      *email,
		Role:       security.Role(*role),
		StudentID:  *studentID,
		Department: *department,
	}, secret, *ttl)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(token)
}
