package store

import (
	"fmt"
	"log"
)

// Seed loads the initial knowledge base and site content. Existing rows in
// the seeded tables are replaced so the command is safe to re-run.
func (s *SQLiteStore) Seed() error {
	for _, table := range []string{"chat_scripts", "page_contexts", "systems", "social_links", "pages"} {
		if _, err := s.db.Exec("DELETE FROM " + table); err != nil {
			return fmt.Errorf("failed to clear table %s: %w", table, err)
		}
	}

	scripts := []ChatScript{
		{
			QuestionPattern: "What is GOAT?",
			Answer:          "GOAT is our comprehensive content creation platform for books, audiobooks, podcasts, and more. It provides enterprise-grade tools for content management and distribution.",
			Category:        "general",
			PageContext:     "global",
		},
		{
			QuestionPattern: "How much does it cost",
			Answer:          "Our pricing starts at $19.99 for the first GB of data processing, with tiered packages available. Contact us for a custom quote based on your needs.",
			Category:        "pricing",
			PageContext:     "global",
		},
		{
			QuestionPattern: "What is True Mark Mint",
			Answer:          "True Mark Mint is our advanced digital asset minting platform with blockchain verification and smart contract integration for secure token creation.",
			Category:        "general",
			PageContext:     "/system/true-mark-mint",
		},
		{
			QuestionPattern: "How does Alpha CertSig Mint work",
			Answer:          "Alpha CertSig Mint provides certificate signature and minting system for digital credentials with cryptographic verification and immutable record keeping.",
			Category:        "technical",
			PageContext:     "/system/alpha-certsig-mint",
		},
		{
			QuestionPattern: "What is CALI Cognitive Systems",
			Answer:          "CALI Cognitive Systems is our cognitive computing platform that mimics human thought processes for advanced problem-solving and decision support.",
			Category:        "technical",
			PageContext:     "/system/cali-cognitive",
		},
		{
			QuestionPattern: "How do I contact you",
			Answer:          "You can reach us at info@spruked.com or visit our social media channels. We're here to help with any questions about our systems and services.",
			Category:        "general",
			PageContext:     "global",
		},
		{
			QuestionPattern: "What makes your systems different",
			Answer:          "Our systems are built with cutting-edge cognitive computing, blockchain integration, and enterprise-grade security. Each system is designed to work seamlessly together as part of our CALI ecosystem.",
			Category:        "general",
			PageContext:     "global",
		},
	}
	for i := range scripts {
		scripts[i].ConfidenceScore = 1.0
		if err := s.insertScript(s.db, &scripts[i]); err != nil {
			return err
		}
	}

	contexts := []PageContext{
		{
			PageRoute:   "/",
			PageName:    "Home",
			Description: "Welcome to Pro Prime Series Systems LLC - Pioneering cognitive systems and blockchain technology",
			KeyTopics:   []string{"introduction", "overview", "systems", "technology"},
			DesignNotes: "Main landing page with hero section and system showcase",
		},
		{
			PageRoute:   "/system/true-mark-mint",
			PageName:    "True Mark Mint",
			Description: "Advanced digital asset minting platform with blockchain verification",
			KeyTopics:   []string{"blockchain", "minting", "digital assets", "smart contracts"},
			DesignNotes: "Detailed system page with features and technical specifications",
		},
		{
			PageRoute:   "/system/cali-cognitive",
			PageName:    "CALI Cognitive Systems",
			Description: "Cognitive computing platform for advanced problem-solving",
			KeyTopics:   []string{"AI", "cognitive computing", "neural networks", "machine learning"},
			DesignNotes: "Technical deep-dive page with architecture diagrams",
		},
	}
	for i := range contexts {
		if err := s.UpsertPageContext(&contexts[i]); err != nil {
			return err
		}
	}

	systems := []System{
		{
			Name:         "True Mark Mint",
			Slug:         "true-mark-mint",
			Title:        "True Mark Mint",
			Description:  "Advanced digital asset minting platform with blockchain verification and smart contract integration for secure token creation.",
			KeyFeatures:  []string{"Blockchain-based minting", "Smart contract automation", "Multi-chain support", "Real-time verification"},
			LearnMoreURL: "https://docs.spruked.com/true-mark-mint",
			Icon:         "🔷",
			Order:        1,
			IsActive:     true,
		},
		{
			Name:         "Alpha CertSig Mint",
			Slug:         "alpha-certsig-mint",
			Title:        "Alpha CertSig Mint",
			Description:  "Certificate signature and minting system for digital credentials with cryptographic verification and immutable record keeping.",
			KeyFeatures:  []string{"Digital certificate generation", "Cryptographic signatures", "Immutable record storage", "Verification API"},
			LearnMoreURL: "https://docs.spruked.com/alpha-certsig",
			Icon:         "📜",
			Order:        2,
			IsActive:     true,
		},
		{
			Name:         "GOAT",
			Slug:         "goat",
			Title:        "GOAT (Global Optimization & Analytics Tool)",
			Description:  "Advanced analytics and optimization platform for complex business processes and decision-making systems.",
			KeyFeatures:  []string{"Predictive analytics", "Process optimization", "Real-time monitoring", "Machine learning integration"},
			LearnMoreURL: "https://docs.spruked.com/goat",
			Icon:         "🐐",
			Order:        3,
			IsActive:     true,
		},
		{
			Name:         "CALI Cognitive Systems",
			Slug:         "cali-cognitive",
			Title:        "CALI Cognitive Systems",
			Description:  "Cognitive computing platform that mimics human thought processes for advanced problem-solving and decision support.",
			KeyFeatures:  []string{"Neural network architecture", "Pattern recognition", "Natural language processing", "Cognitive learning"},
			LearnMoreURL: "https://docs.spruked.com/cali-cognitive",
			Icon:         "🧠",
			Order:        4,
			IsActive:     true,
		},
	}
	for i := range systems {
		if err := s.CreateSystem(&systems[i]); err != nil {
			return err
		}
	}

	links := []SocialLink{
		{Platform: "twitter", URL: "https://twitter.com/proprimeseries", Icon: "🐦", Order: 1, IsActive: true},
		{Platform: "linkedin", URL: "https://linkedin.com/company/pro-prime-series", Icon: "💼", Order: 2, IsActive: true},
		{Platform: "github", URL: "https://github.com/proprime", Icon: "🐙", Order: 3, IsActive: true},
	}
	for i := range links {
		if err := s.CreateSocialLink(&links[i]); err != nil {
			return err
		}
	}

	pages := []Page{
		{
			Name:            "home",
			Title:           "Pro Prime Series Systems",
			Content:         "Pioneering cognitive systems and blockchain technology for the next generation of digital infrastructure.",
			MetaDescription: "Pro Prime Series Systems LLC - cognitive systems and blockchain technology",
			IsPublished:     true,
		},
		{
			Name:            "contact",
			Title:           "Contact Us",
			Content:         "Reach us at info@spruked.com or through our social channels.",
			MetaDescription: "Contact Pro Prime Series Systems",
			IsPublished:     true,
		},
	}
	for i := range pages {
		if err := s.CreatePage(&pages[i]); err != nil {
			return err
		}
	}

	log.Printf("Seeded %d scripts, %d page contexts, %d systems, %d social links, %d pages",
		len(scripts), len(contexts), len(systems), len(links), len(pages))
	return nil
}
