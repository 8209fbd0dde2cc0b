package testutil

// Inputs are streams of concatenated JSON values used to check that decoders
// agree with one another and that results do not depend on chunk size.
var Inputs = []string{
	``,
	`   `,
	`{"a":1}{"b":2}`,
	`   {"x":[1,2,3]}  `,
	`1 2 3`,
	`-12.5e3 0 "tail"`,
	`true false null`,
	`[] {} "" [[]] {"":{}}`,
	"{\"a\": \"multi\\nline\", \"u\": \"\\u00e9t\\u00e9\"}\n[\"café\", \"☃\", \"\U0001F600\"]",
	"\t{\"tab\": true}\t\n{\"nl\": 1}\n\r\n[1, 2]\r\n",
	`{"nested":{"deep":{"deeper":[{"k":[1,[2,[3,[4]]]]}]}},"n":null}`,
	`"a string with {braces} and [brackets]" "esc \" quote" "back\\slash"`,
	`[1e10, -0.0, 3.14159, 12345678901234567890]` + "\n" + `{"big": 1.5E+300}`,
	`{"k": "v"} 42 ["x"] "y" false`,
	`truenull`,
	`[1]falsetrue`,
	`nullnull`,
	`"s"true{}false[null]null`,
}
