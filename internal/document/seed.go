package document

// Seed returns the built-in labor law reference set. Content is an English
// rendering of the cited articles; URLs point at the published source text.
//
// Keep IDs stable: conversation exports and ingest reviews reference them.
func Seed() []Document {
	return []Document{
		{
			ID:      "labor-law-art-68",
			Title:   "Labor Law - Annual Leave",
			Section: "leave",
			Article: "68",
			Content: "In each calendar year an employee is entitled to annual leave of " +
				"at least 20 working days. The length of annual leave is determined by " +
				"increasing the legal minimum according to contribution at work, working " +
				"conditions, work experience, professional qualifications and other " +
				"criteria set out in the collective agreement or employment contract. " +
				"An employee who starts employment or whose employment ends during a " +
				"calendar year is entitled to a proportional part of annual leave.",
			URL: "https://www.paragraf.rs/propisi/zakon_o_radu.html#cl68",
		},
		{
			ID:      "labor-law-art-50",
			Title:   "Labor Law - Working Hours",
			Section: "working-time",
			Article: "50",
			Content: "Full working hours amount to 40 hours per week unless the law " +
				"provides otherwise. A collective agreement may establish working hours " +
				"shorter than 40 but not shorter than 36 hours per week, with the " +
				"employee exercising all rights as if working full hours.",
			URL: "https://www.paragraf.rs/propisi/zakon_o_radu.html#cl50",
		},
		{
			ID:      "labor-law-art-53",
			Title:   "Labor Law - Overtime Work",
			Section: "working-time",
			Article: "53",
			Content: "At the employer's request an employee is obliged to work longer " +
				"than full working hours in case of force majeure, a sudden increase in " +
				"the volume of work, or when unplanned work must be completed within a " +
				"set deadline. Overtime work may not exceed 8 hours per week. An " +
				"employee may not work longer than 12 hours per day including overtime.",
			URL: "https://www.paragraf.rs/propisi/zakon_o_radu.html#cl53",
		},
		{
			ID:      "labor-law-art-94",
			Title:   "Labor Law - Maternity and Child Care Leave",
			Section: "leave",
			Article: "94",
			Content: "An employed woman is entitled to maternity leave and to leave for " +
				"child care for a total duration of 365 days. Maternity leave begins at " +
				"the earliest 45 days and compulsorily 28 days before the expected date " +
				"of delivery, and lasts until three months after the delivery.",
			URL: "https://www.paragraf.rs/propisi/zakon_o_radu.html#cl94",
		},
		{
			ID:      "labor-law-art-186",
			Title:   "Labor Law - Notice Period on Termination",
			Section: "termination",
			Article: "186",
			Content: "An employee who terminates the employment contract must submit the " +
				"termination to the employer in writing at least 15 days before the day " +
				"stated as the end of employment. The notice period may be extended by " +
				"the general act or the employment contract up to 30 days.",
			URL: "https://www.paragraf.rs/propisi/zakon_o_radu.html#cl186",
		},
		{
			ID:      "labor-law-art-104",
			Title:   "Labor Law - Wages and Salary",
			Section: "compensation",
			Article: "104",
			Content: "An employee is entitled to an adequate wage determined in " +
				"accordance with the law, the general act and the employment contract. " +
				"Employees are guaranteed equal wages for the same work or work of the " +
				"same value performed for the employer.",
			URL: "https://www.paragraf.rs/propisi/zakon_o_radu.html#cl104",
		},
		{
			ID:      "labor-law-art-114",
			Title:   "Labor Law - Wage Compensation During Sick Leave",
			Section: "compensation",
			Article: "114",
			Content: "An employee is entitled to wage compensation during absence from " +
				"work due to temporary incapacity for work up to 30 days, in the amount " +
				"of at least 65 percent of the average wage in the preceding 12 months " +
				"in case of illness or injury outside work, and in the amount of 100 " +
				"percent in case of a work injury or occupational disease.",
			URL: "https://www.paragraf.rs/propisi/zakon_o_radu.html#cl114",
		},
		{
			ID:      "labor-law-art-30",
			Title:   "Labor Law - Employment Contract",
			Section: "contract",
			Article: "30",
			Content: "An employment relationship is established by an employment " +
				"contract concluded between the employee and the employer before the " +
				"employee starts working. The contract is concluded in at least three " +
				"copies, one of which is mandatorily handed to the employee.",
			URL: "https://www.paragraf.rs/propisi/zakon_o_radu.html#cl30",
		},
	}
}
