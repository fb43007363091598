package cv

// DefaultCV returns the built-in template document. It is the starting point
// for every session, the base that Normalize merges partial input over, and
// the only document state compiled into the application.
func DefaultCV() CVData {
	return CVData{
		Name:  "Ho Phat",
		Title: "IT Manager",
		Contact: Contact{
			Location:  "Thu Duc, Ho Chi Minh City",
			Phone:     "0989-511-431",
			Email:     "hophat271996@gmail.com",
			LinkedIn:  "linkedin.com/in/ho-phat",
			Portfolio: "gulagi.com",
		},
		Profile: "Dynamic IT Manager with a proven track record at Playground Vina, where I expanded the development team from 4 to 32 members. Skilled in PHP and project management, I successfully implemented CI/CD pipelines, enhancing operational efficiency and driving project success. Recognized for leadership and innovative solutions in fast-paced environments.",
		Skills: []string{
			"PHP and Node.js",
			"Blockchain technologies: Geth and Solidity",
			"Continuous integration & delivery (CI/CD)",
			"Elasticsearch expertise",
			"Database management: MySQL & MongoDB",
			"Project management",
			"Team leadership & time management",
		},
		WorkExperience: []WorkExperience{
			{
				Role:     "IT Manager",
				Company:  "Vang Trang Khuyet Social Organization and Charity Fund",
				Period:   "Jan 2025 – Present",
				Location: "Ho Chi Minh",
				Responsibilities: []string{
					"Digitized operations for charitable organization, achieving 70% completion.",
					"Developed flexible workflows using base.vn system.",
					"Created tracking system for gift distribution to beneficiaries.",
					"Managed IT team to ensure operational efficiency.",
					"Integrated third-party software solutions to enhance functionality.",
				},
			},
			{
				Role:    "IT Manager",
				Company: "Playground Vina",
				Period:  "Nov 2021 – Dec 2024",
				Responsibilities: []string{
					"Directed development of two core company projects.",
					"Expanded workforce from 4 to 32 developers.",
					"Established Dev team workflows using hybrid Scrum and Lean model.",
					"Built CI/CD pipelines with AWS, Ubuntu, Git, Jenkins.",
					"Developed apps with PHP, Node.js (NestJS), React.js, React Native.",
					"Reviewed code quality to uphold best practices.",
					"Managed four teams with 32 members to meet objectives.",
					"Assisted in IT solution implementation to boost operational efficiency.",
				},
			},
			{
				Role:    "Solutions Developer",
				Company: "Librasoft",
				Period:  "Jun 2019 – Oct 2021",
				Responsibilities: []string{
					"Collaborated with director to devise solutions for company projects.",
					"Led team of 2 developers ensuring efficient execution.",
					"Developed web and app solutions using PHP, Ionic, Vue.js, Angular.",
					"Engaged with customers to gather requirements and propose solutions.",
					"Planned project phases to align with company strategy.",
					"Recognized as key member, proposed for 5% equity.",
				},
			},
			{
				Role:    "PHP Developer",
				Company: "PA Vietnam",
				Period:  "Jun 2017 – May 2019",
				Responsibilities: []string{
					"Collaborated with eCommerce project leader to drive outcomes.",
					"Optimized system performance by reducing code clutter 30–40%.",
					"Developed PHP code without reliance on frameworks.",
					"Earned “Outstanding Employee of the Year” recognition.",
				},
			},
		},
		Education: []Education{
			{
				Degree:      "Information Technology",
				Institution: "Industrial University of Ho Chi Minh City",
				Year:        "Jan 2018",
			},
			{
				Degree:      "High School",
				Institution: "Ly Thuong Kiet High School, Binh Thuan",
				Year:        "Jan 2014",
			},
		},
		Projects: []Project{
			{Name: "VTK", Description: "Check-in & Charity Gift Distribution System"},
			{Name: "RMMS.VN", Description: "Vietnam Road Asset Management System"},
			{Name: "Winery.swap", Description: "Decentralized Exchange Platform"},
			{Name: "AIzen Loan", Description: "Unsecured Loan System"},
			{Name: "Pool Wallet", Description: "Web3 Digital Wallet"},
		},
		Languages: []string{"Vietnamese (Native)", "English (Working proficiency)"},
		Interests: []string{"Playing football", "Gaming", "Coffee"},
	}.Sanitized()
}
