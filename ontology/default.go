package ontology

// Default returns the built-in general-purpose ontology covering
// people, organizations, locations, events, products and abstract
// concepts, with Chinese trigger phrases on every relation type.
func Default() *Registry {
	r := NewRegistry()

	entityTypes := []EntityType{
		{
			Name:        "Person",
			Description: "A natural person",
			Properties:  []string{"birth_date", "nationality", "occupation"},
			Exemplars:   []string{"张三", "李四", "王五", "马云", "史蒂夫·乔布斯", "蒂姆·库克"},
		},
		{
			Name:        "Organization",
			Description: "A company, institution or other organized group",
			Properties:  []string{"founded", "headquarters", "industry"},
			Exemplars:   []string{"北京大学", "清华大学", "阿里巴巴集团", "腾讯公司", "苹果公司", "中国科学院"},
		},
		{
			Name:        "Location",
			Description: "A geographic or administrative place",
			Properties:  []string{"country", "population"},
			Exemplars:   []string{"北京市", "杭州市", "深圳市", "海淀区", "中关村", "美国"},
		},
		{
			Name:        "Event",
			Description: "A happening at some time and place",
			Properties:  []string{"date", "venue"},
			Exemplars:   []string{"世界人工智能大会", "全球开发者大会", "学术论坛"},
		},
		{
			Name:        "Product",
			Description: "A product, service or artifact",
			Properties:  []string{"category", "release_date"},
			Exemplars:   []string{"iPhone", "微信", "淘宝", "支付宝", "ChatGPT"},
		},
		{
			Name:        "Concept",
			Description: "An abstract concept or field",
			Properties:  []string{"field"},
			Exemplars:   []string{"人工智能", "机器学习", "深度学习", "云计算"},
		},
	}
	for _, et := range entityTypes {
		if err := r.RegisterEntityType(et); err != nil {
			panic(err)
		}
	}

	relationTypes := []RelationType{
		{
			Name:        "works_for",
			Description: "Employment or affiliation",
			Domain:      []string{"Person"},
			Range:       []string{"Organization"},
			Phrases:     []string{"在", "工作", "任职", "就职", "担任", "教授", "员工", "工程师"},
			Properties:  []string{"position", "since"},
		},
		{
			Name:        "graduated_from",
			Description: "Completed studies at an institution",
			Domain:      []string{"Person"},
			Range:       []string{"Organization"},
			Phrases:     []string{"毕业于", "就读于", "学生", "毕业生", "博士"},
		},
		{
			Name:        "founder_of",
			Description: "Founded an organization",
			Domain:      []string{"Person"},
			Range:       []string{"Organization"},
			Phrases:     []string{"创立", "创建", "创办", "成立", "创始人"},
		},
		{
			Name:        "born_in",
			Description: "Place of birth",
			Domain:      []string{"Person"},
			Range:       []string{"Location"},
			Phrases:     []string{"出生于", "生于", "出生"},
		},
		{
			Name:        "located_in",
			Description: "Physical or administrative containment",
			Domain:      []string{"Organization", "Location", "Event"},
			Range:       []string{"Location"},
			Phrases:     []string{"位于", "坐落于", "设在", "总部"},
		},
		{
			Name:        "parent_of",
			Description: "Parent and child",
			Domain:      []string{"Person"},
			Range:       []string{"Person"},
			Phrases:     []string{"父亲", "母亲", "儿子", "女儿"},
		},
		{
			Name:        "spouse_of",
			Description: "Marriage",
			Domain:      []string{"Person"},
			Range:       []string{"Person"},
			Phrases:     []string{"妻子", "丈夫", "结婚", "配偶"},
		},
		{
			Name:        "friend_of",
			Description: "Friendship",
			Domain:      []string{"Person"},
			Range:       []string{"Person"},
			Phrases:     []string{"朋友", "好友"},
		},
		{
			Name:        "participated_in",
			Description: "Took part in an event",
			Domain:      []string{"Person", "Organization"},
			Range:       []string{"Event"},
			Phrases:     []string{"参加", "参与", "出席"},
		},
		{
			Name:        "occurred_at",
			Description: "Event took place at a location",
			Domain:      []string{"Event"},
			Range:       []string{"Location"},
			Phrases:     []string{"举行", "召开", "举办"},
		},
		{
			Name:        "produces",
			Description: "Organization makes a product",
			Domain:      []string{"Organization"},
			Range:       []string{"Product"},
			Phrases:     []string{"生产", "制造", "开发", "推出", "发布"},
		},
	}
	for _, rt := range relationTypes {
		if err := r.RegisterRelationType(rt); err != nil {
			panic(err)
		}
	}

	return r
}
