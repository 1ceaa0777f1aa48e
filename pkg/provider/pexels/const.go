package pexels

// pexelsServiceName is the registry key and keyring user for the Pexels source
const pexelsServiceName = "pexels"

// Pexels API URLs
const (
	PexelsAPICuratedURL = "https://api.pexels.com/v1/curated"
	PexelsAPISearchURL  = "https://api.pexels.com/v1/search"

	// PexelsPerPage is the largest page the API serves.
	PexelsPerPage = 80
)
