package database

import (
	"fmt"
	"log"
	"time"

	"github.com/parikshasetu/api/model"
	"gorm.io/gorm"
)

// SeedDemoTest creates one scheduled demo test with a small bilingual
// question set when the tests table is empty. Intended for local
// development so the attempt and leaderboard flows have something to run
// against without a real PDF ingestion.
func SeedDemoTest(db *gorm.DB) error {
	var count int64
	if err := db.Model(&model.Test{}).Count(&count).Error; err != nil {
		return fmt.Errorf("failed to count tests: %w", err)
	}
	if count > 0 {
		log.Println("Seed: tests already present, skipping demo test")
		return nil
	}

	questions := demoQuestions()

	now := time.Now()
	test := &model.Test{
		Title:            "Demo General Studies Test",
		DurationMinutes:  30,
		MarksPerQuestion: 2,
		NegativeMarking:  0.66,
		TotalMarks:       float64(len(questions)) * 2,
		IsBilingual:      true,
		StartTime:        now,
		EndTime:          now.Add(7 * 24 * time.Hour),
		ExtractionStatus: model.TestExtractionCompleted,
		ExtractionMethod: "direct",
	}
	if err := test.EncodeQuestions(questions); err != nil {
		return fmt.Errorf("failed to encode demo questions: %w", err)
	}

	if err := db.Create(test).Error; err != nil {
		return fmt.Errorf("failed to create demo test: %w", err)
	}

	log.Printf("Seed: created demo test %d with %d questions", test.ID, len(questions))
	return nil
}

func demoQuestions() []model.MergedQuestion {
	data := []struct {
		english string
		hindi   string
		optsEN  [4]string
		optsHI  [4]string
		answer  string
	}{
		{
			english: "Who was the first President of India?",
			hindi:   "भारत के प्रथम राष्ट्रपति कौन थे?",
			optsEN:  [4]string{"Rajendra Prasad", "Jawaharlal Nehru", "Sardar Patel", "S. Radhakrishnan"},
			optsHI:  [4]string{"राजेंद्र प्रसाद", "जवाहरलाल नेहरू", "सरदार पटेल", "एस. राधाकृष्णन"},
			answer:  "A",
		},
		{
			english: "Which article deals with the Election Commission?",
			hindi:   "कौन सा अनुच्छेद निर्वाचन आयोग से संबंधित है?",
			optsEN:  [4]string{"Article 320", "Article 324", "Article 330", "Article 352"},
			optsHI:  [4]string{"अनुच्छेद 320", "अनुच्छेद 324", "अनुच्छेद 330", "अनुच्छेद 352"},
			answer:  "B",
		},
		{
			english: "The Battle of Plassey was fought in which year?",
			hindi:   "प्लासी का युद्ध किस वर्ष लड़ा गया?",
			optsEN:  [4]string{"1757", "1764", "1857", "1761"},
			optsHI:  [4]string{"1757", "1764", "1857", "1761"},
			answer:  "A",
		},
		{
			english: "Which river is known as the Sorrow of Bengal?",
			hindi:   "किस नदी को बंगाल का शोक कहा जाता है?",
			optsEN:  [4]string{"Ganga", "Damodar", "Kosi", "Teesta"},
			optsHI:  [4]string{"गंगा", "दामोदर", "कोसी", "तीस्ता"},
			answer:  "B",
		},
		{
			english: "Who wrote the national anthem of India?",
			hindi:   "भारत का राष्ट्रगान किसने लिखा?",
			optsEN:  [4]string{"Bankim Chandra", "Rabindranath Tagore", "Sarojini Naidu", "Subhash Bose"},
			optsHI:  [4]string{"बंकिम चंद्र", "रवींद्रनाथ टैगोर", "सरोजिनी नायडू", "सुभाष बोस"},
			answer:  "B",
		},
	}

	keys := [4]string{"A", "B", "C", "D"}
	questions := make([]model.MergedQuestion, len(data))
	for i, d := range data {
		q := model.MergedQuestion{
			Number: i + 1,
			Question: model.BilingualText{
				English: d.english,
				Hindi:   d.hindi,
			},
			CorrectAnswer: d.answer,
		}
		for j := range q.Options {
			q.Options[j] = model.TestOption{
				Key:     keys[j],
				English: d.optsEN[j],
				Hindi:   d.optsHI[j],
			}
		}
		questions[i] = q
	}
	return questions
}
