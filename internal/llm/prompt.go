package llm

import (
	"strings"
)

// UserPrompt accompanies the image in the user turn.
const UserPrompt = "Analyze this image. Determine its orientation first, then extract the information it contains."

const preamble = `You extract information from images of identity documents.
You will be given an image of a %DOC%. Look at the whole image first, decide how it is rotated, then return one JSON object matching the schema.`

const missingAndFormat = `
Missing or unreadable data
  - If a field is not present or cannot be read with confidence, return an empty string "".
Output format
  - Return a single well-formed JSON object that strictly matches the schema. No text outside the JSON.`

const genericOrientation = `
Orientation
  - Use the position of the head photo and of the text to decide how the image is rotated.
  - Report the clockwise rotation of the image as an integer: 0, 90, 180 or 270.`

var ktpInstructions = buildInstructions("KTP (Indonesian identity card)", `
Document check (is_document)
  - true only if the image shows the front side of a KTP with readable personal data; otherwise false.
Orientation
  - An upright KTP has the head photo on the right and the text block on its left.
  - Head photo at the bottom, text above it and upside down: 90 degrees clockwise.
  - Head photo on the left, text on its right: 180 degrees clockwise.
  - Head photo at the top, text below it: 270 degrees clockwise.
  - Report the clockwise rotation as an integer: 0, 90, 180 or 270.
Field rules
  - id_number: the NIK, exactly 16 digits.
  - fullname: upper case, exactly as printed ("Nama").
  - date_of_birth: from "Tanggal Lahir", converted to YYYY-MM-DD.
  - place_of_birth: from "Tempat Lahir", upper case. It must be a real city; fix obvious OCR-like misspellings of a well-known city.
  - sex: "Jenis Kelamin"; LAKI-LAKI maps to "M", PEREMPUAN maps to "F".
  - nationality: "Kewarganegaraan", "WNI" for citizens and "WNA" for foreigners.`)

var passportInstructions = buildInstructions("passport", `
Document check (is_document)
  - true only if the image shows the biographical data page of a passport; otherwise false.`+genericOrientation+`
Field rules
  - id_number: the passport number exactly as printed.
  - fullname: upper case, exactly as printed.
  - date_of_birth: converted to YYYY-MM-DD.
  - place_of_birth: exactly as printed, upper case.
  - sex: "M" for male, "F" for female.
  - nationality: ISO 3166-1 alpha-2 code, upper case.`)

var ijazahInstructions = buildInstructions("Ijazah (graduation certificate)", `
Document check (is_document)
  - true if the image shows an Ijazah, an SKL (Surat Keterangan Lulus) or any other student graduation certificate; otherwise false.`+genericOrientation+`
Field rules
  - fullname: upper case, exactly as printed.
  - date_of_birth: converted to YYYY-MM-DD.
  - place_of_birth: exactly as printed, upper case.`)

func buildInstructions(doc, body string) string {
	var b strings.Builder
	b.WriteString(strings.ReplaceAll(preamble, "%DOC%", doc))
	b.WriteString("\n")
	b.WriteString(strings.TrimLeft(body, "\n"))
	b.WriteString(missingAndFormat)
	return b.String()
}
