package database

import (
	"regexp"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("migrations", func() {
	It("lists versions in ascending order", func() {
		Expect(migrationVersions()).To(Equal([]int{1, 2, 3, 4}))
	})

	It("creates every referenced table in an earlier migration", func() {
		createPattern := regexp.MustCompile(`CREATE TABLE IF NOT EXISTS (\w+)`)
		refPattern := regexp.MustCompile(`REFERENCES (\w+)`)

		created := map[string]bool{}
		for _, version := range migrationVersions() {
			sql := migrations[version]
			for _, m := range refPattern.FindAllStringSubmatch(sql, -1) {
				Expect(created).To(HaveKey(m[1]),
					"migration %d references %s before any migration creates it", version, m[1])
			}
			for _, m := range createPattern.FindAllStringSubmatch(sql, -1) {
				created[m[1]] = true
			}
		}
	})
})
