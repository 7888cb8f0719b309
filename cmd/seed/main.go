package main

import (
	"log"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
)

// Sample corpus for local development. The flattened metadata file feeds the
// structured index and the txt fallback, the docs feed the vector tier.

var sampleMetadata = `# Flattened bucket metadata export
bucket: logs-archive | department: engineering | label: retention:long | region: eu-west-1 | size: 1.2TB | objects: 84210
bucket: ci-artifacts | department: engineering | label: retention:short | region: eu-west-1 | size: 340GB | objects: 129554
bucket: finance-reports | department: finance | label: audit | region: eu-central-1 | size: 18GB | objects: 2041
bucket: finance-invoices | department: finance | label: audit | region: eu-central-1 | size: 7GB | objects: 11874
bucket: marketing-assets | department: marketing | label: public | region: us-east-1 | size: 120GB | objects: 45021
bucket: hr-records | department: hr | label: restricted | region: eu-central-1 | size: 3GB | objects: 982
bucket: analytics-raw-events | department: data | label: env:prod | region: eu-west-1 | size: 9.8TB | objects: 18033412
bucket: analytics-staging | department: data | label: env:staging | region: eu-west-1 | size: 410GB | objects: 733201
bucket: backup-snapshots | department: it | label: retention:long | region: eu-west-1 | size: 22TB | objects: 4410
bucket: scratch-space | department: qa | label: temp | region: us-east-1 | size: 55GB | objects: 30122
`

var sampleDocs = map[string]string{
	"bucket_lifecycle.md": `# Bucket lifecycle policies

Buckets labelled ` + "`retention:long`" + ` keep objects for seven years before
transitioning them to cold storage. Buckets labelled ` + "`retention:short`" + `
expire objects after thirty days.

Lifecycle rules are evaluated nightly. Deleting a rule does not restore
objects that were already expired by it.

## Changing a policy

File a request with the owning department. Engineering owns the
` + "`logs-archive`" + ` and ` + "`ci-artifacts`" + ` buckets, IT owns ` + "`backup-snapshots`" + `.
`,
	"storage_quotas.txt": `Department storage quotas

Each department has a soft quota reviewed quarterly. Engineering and data
share the eu-west-1 capacity pool, finance and hr run in eu-central-1 for
residency reasons. The marketing-assets bucket is the only public bucket
and is served through the CDN.

Exceeding a soft quota triggers a warning to the department owner.
Exceeding it by more than 20 percent blocks new uploads until the quota
is raised or data is cleaned up.
`,
}

func main() {
	// Load Environment Variables
	if err := godotenv.Load(); err != nil {
		log.Println("Info: No .env file found, using system env")
	}

	docsPath := os.Getenv("DOCS_PATH")
	if docsPath == "" {
		docsPath = "docs"
	}
	flattenedPath := os.Getenv("FLATTENED_TXT_PATH")
	if flattenedPath == "" {
		flattenedPath = filepath.Join(docsPath, "sample_bucket_metadata_converted.txt")
	}

	if err := os.MkdirAll(docsPath, 0o755); err != nil {
		log.Fatal("Error: Failed to create docs directory:", err)
	}

	log.Println("Seeding sample corpus...")

	writeIfMissing(flattenedPath, sampleMetadata)
	for name, content := range sampleDocs {
		writeIfMissing(filepath.Join(docsPath, name), content)
	}

	log.Println("Corpus seeding completed!")
	log.Println("Run the server and ask it about a department or label, or rebuild the vector index via /api/admin/vector/rebuild.")
}

func writeIfMissing(path, content string) {
	if _, err := os.Stat(path); err == nil {
		log.Printf("File '%s' already exists, skipping...", path)
		return
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		log.Printf("Error writing '%s': %v", path, err)
	} else {
		log.Printf("Created file: %s", path)
	}
}
