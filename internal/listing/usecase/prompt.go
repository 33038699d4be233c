package usecase

import (
	"strings"

	"github.com/arman61-hub/AutoDek/internal/listing/domain"
)

func quoteList(values []string) string {
	quoted := make([]string, len(values))
	for i, v := range values {
		quoted[i] = `"` + v + `"`
	}
	return "[" + strings.Join(quoted, ", ") + "]"
}

// buildListingPrompt instructs the model to return one JSON object with the
// full listing field set, with enum fields restricted to the closed sets the
// rest of the system accepts.
func buildListingPrompt() string {
	var b strings.Builder
	b.WriteString("Analyze the given car image and extract the most accurate possible details.\n\n")
	b.WriteString("IMPORTANT RULES:\n")
	b.WriteString("- You MUST choose values ONLY from the allowed lists below.\n")
	b.WriteString("- If unsure, pick the closest reasonable option.\n")
	b.WriteString("- Do NOT invent brands or formats.\n")
	b.WriteString("- Output MUST be valid JSON only (no markdown, no explanation).\n\n")
	b.WriteString("ALLOWED VALUES:\n\n")
	b.WriteString("Fuel Type (choose exactly one):\n")
	b.WriteString(quoteList(domain.FuelTypes) + "\n\n")
	b.WriteString("Transmission (choose exactly one):\n")
	b.WriteString(quoteList(domain.Transmissions) + "\n\n")
	b.WriteString("Body Type (choose exactly one):\n")
	b.WriteString(quoteList(domain.BodyTypes) + "\n\n")
	b.WriteString("DATA RULES:\n")
	b.WriteString(`- "price" must be a NUMBER ONLY in the form of a string (no "$", no commas, no text, no extra spaces)` + "\n")
	b.WriteString(`- "mileage" must be a realistic whole number in the form of a string, in kilometers` + "\n")
	b.WriteString(`- "year" must be a realistic 4-digit number` + "\n")
	b.WriteString(`- "description" must be short, clean, and suitable for a car listing` + "\n")
	b.WriteString("- If any detail is uncertain, make a reasonable guess\n\n")
	b.WriteString("Return the response in this EXACT JSON format:\n\n")
	b.WriteString(`{
  "make": "",
  "model": "",
  "year": 0000,
  "color": "",
  "price": "",
  "mileage": "",
  "bodyType": "",
  "fuelType": "",
  "transmission": "",
  "description": "",
  "confidence": 0.0
}` + "\n\n")
	b.WriteString(`- "confidence" must be a number between 0 and 1.` + "\n")
	b.WriteString("- Respond with ONLY the JSON object.\n")
	return b.String()
}

// buildSearchPrompt is the lighter variant used for search-by-image. Body
// type is a hint here, not a hard enum, so the list is advisory.
func buildSearchPrompt() string {
	var b strings.Builder
	b.WriteString("Analyze this car image and extract the following information for a search query:\n")
	b.WriteString("1. Make (manufacturer)\n")
	b.WriteString("2. Body type (" + strings.Join(domain.BodyTypes, ", ") + ", etc.)\n")
	b.WriteString("3. Color\n\n")
	b.WriteString("Format your response as a clean JSON object with these fields:\n")
	b.WriteString(`{
  "make": "",
  "bodyType": "",
  "color": "",
  "confidence": 0.0
}` + "\n\n")
	b.WriteString("For confidence, provide a value between 0 and 1 representing how confident you are in your overall identification.\n")
	b.WriteString("Only respond with the JSON object, nothing else.\n")
	return b.String()
}
