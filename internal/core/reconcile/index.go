package reconcile

// indexEntry itemNameMap 的查表結果
// 品種名稱會同時帶出父品項與品種
type indexEntry struct {
	ItemCode    string
	VarietyCode string
}

// Index 型錄的暫時性查表結構
// 每次調和呼叫都從型錄重建，不做快取，也不持久化
type Index struct {
	items        map[string]*CatalogItem
	itemNameMap  map[string]indexEntry
	varietyNames map[string]map[string]string
}

// BuildIndex 掃描型錄建立名稱索引
// 收集的候選名稱：正式名稱、標準化名稱、所有別名、每個翻譯的單複數、
// 品項代碼本身、命名空間；品種則收集代碼與所有翻譯值
func BuildIndex(catalog []CatalogItem) *Index {
	idx := &Index{
		items:        make(map[string]*CatalogItem, len(catalog)),
		itemNameMap:  make(map[string]indexEntry),
		varietyNames: make(map[string]map[string]string),
	}

	for i := range catalog {
		item := &catalog[i]
		idx.items[item.Code] = item

		for _, name := range itemNames(item) {
			key := Normalize(name)
			if key == "" {
				continue
			}
			if _, taken := idx.itemNameMap[key]; !taken {
				idx.itemNameMap[key] = indexEntry{ItemCode: item.Code}
			}
		}

		for _, v := range item.Varieties {
			names := append([]string{v.Code}, varietyNames(v)...)
			for _, name := range names {
				key := Normalize(name)
				if key == "" {
					continue
				}
				// 品種名稱同時註冊品項與品種，一次查表就能解析兩者
				if _, taken := idx.itemNameMap[key]; !taken {
					idx.itemNameMap[key] = indexEntry{ItemCode: item.Code, VarietyCode: v.Code}
				}
				if idx.varietyNames[item.Code] == nil {
					idx.varietyNames[item.Code] = make(map[string]string)
				}
				if _, taken := idx.varietyNames[item.Code][key]; !taken {
					idx.varietyNames[item.Code][key] = v.Code
				}
			}
		}
	}

	return idx
}

// itemNames 收集品項的所有候選名稱（去重交給索引端）
func itemNames(item *CatalogItem) []string {
	names := []string{item.Name}
	if item.StandardizedName != "" {
		names = append(names, item.StandardizedName)
	}
	names = append(names, item.Aliases...)
	for _, tr := range item.Translations {
		if tr.Singular != "" {
			names = append(names, tr.Singular)
		}
		if tr.Plural != "" {
			names = append(names, tr.Plural)
		}
	}
	names = append(names, item.Code, item.Namespace)
	return names
}

// varietyNames 收集品種的所有翻譯值
func varietyNames(v CatalogVariety) []string {
	names := make([]string, 0, len(v.Translations))
	for _, name := range v.Translations {
		if name != "" {
			names = append(names, name)
		}
	}
	return names
}

// Item 以代碼取得品項，僅限逐字匹配
func (idx *Index) Item(code string) (*CatalogItem, bool) {
	item, ok := idx.items[code]
	return item, ok
}

// ResolveItem 將自由文字或宣稱代碼解析為品項代碼
// 順序：(1) 代碼逐字存在於型錄 (2) 正規化後查 itemNameMap
// 查無結果不是錯誤，回傳 ok=false 交給上層做暫定品項處理
func (idx *Index) ResolveItem(raw string) (entry indexEntry, ok bool) {
	if _, exists := idx.items[raw]; exists {
		return indexEntry{ItemCode: raw}, true
	}
	entry, ok = idx.itemNameMap[Normalize(raw)]
	return entry, ok
}

// ResolveVariety 驗證或解析品項下的品種代碼
// 代碼本身是已知品種則直接採用，否則正規化後查該品項的品種名稱表
func (idx *Index) ResolveVariety(itemCode, rawVariety string) (string, bool) {
	item, ok := idx.items[itemCode]
	if ok {
		for _, v := range item.Varieties {
			if v.Code == rawVariety {
				return v.Code, true
			}
		}
	}
	if names := idx.varietyNames[itemCode]; names != nil {
		if code, ok := names[Normalize(rawVariety)]; ok {
			return code, true
		}
	}
	return "", false
}
